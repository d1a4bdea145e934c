package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const transactionColumns = "id, description, dateadded, fee_percentage, fee_amount, task_type, task_id, task_title, parent_task_id, preferred, client_id, last_sync"

// TransactionExists reports whether a transaction with the id is stored.
func (s *Store) TransactionExists(ctx context.Context, id int64) (bool, error) {
	found, err := s.exists(ctx, "SELECT COUNT(1) FROM transactions WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("check transaction %d: %w", id, err)
	}
	return found, nil
}

// InsertTransaction stores a new transaction.
func (s *Store) InsertTransaction(ctx context.Context, txn *Transaction) error {
	if txn == nil {
		return errors.New("transaction is nil")
	}
	_, err := s.db.ExecContext(ensureContext(ctx),
		`INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.Description,
		formatDateTime(txn.DateAdded),
		txn.FeePercentage,
		txn.FeeAmount,
		txn.TaskType,
		txn.TaskID,
		txn.TaskTitle,
		txn.ParentTaskID,
		boolToInt(txn.Preferred),
		txn.ClientID,
		txn.LastSync,
	)
	if err != nil {
		return fmt.Errorf("insert transaction %d: %w", txn.ID, err)
	}
	return nil
}

// UpdateTransaction rewrites every column of an existing transaction.
func (s *Store) UpdateTransaction(ctx context.Context, txn *Transaction) error {
	if txn == nil {
		return errors.New("transaction is nil")
	}
	_, err := s.db.ExecContext(ensureContext(ctx),
		`UPDATE transactions SET
			description = ?, dateadded = ?, fee_percentage = ?, fee_amount = ?,
			task_type = ?, task_id = ?, task_title = ?, parent_task_id = ?,
			preferred = ?, client_id = ?, last_sync = ?
		WHERE id = ?`,
		txn.Description,
		formatDateTime(txn.DateAdded),
		txn.FeePercentage,
		txn.FeeAmount,
		txn.TaskType,
		txn.TaskID,
		txn.TaskTitle,
		txn.ParentTaskID,
		boolToInt(txn.Preferred),
		txn.ClientID,
		txn.LastSync,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", txn.ID, err)
	}
	return nil
}

// GetTransaction returns the stored transaction or nil when absent.
func (s *Store) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return txn, nil
}

// CountTransactions returns the number of stored transactions.
func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(scanner interface{ Scan(dest ...any) error }) (*Transaction, error) {
	var (
		txn       Transaction
		dateAdded sql.NullString
		preferred int
	)
	if err := scanner.Scan(
		&txn.ID,
		&txn.Description,
		&dateAdded,
		&txn.FeePercentage,
		&txn.FeeAmount,
		&txn.TaskType,
		&txn.TaskID,
		&txn.TaskTitle,
		&txn.ParentTaskID,
		&preferred,
		&txn.ClientID,
		&txn.LastSync,
	); err != nil {
		return nil, err
	}
	txn.Preferred = preferred != 0
	if parsed := nullTimePtr(dateAdded); parsed != nil {
		txn.DateAdded = *parsed
	}
	return &txn, nil
}
