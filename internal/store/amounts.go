package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const amountColumns = "task_id, client_id, credit_revenue_id, credit_revenue_amount, credit_fee_id, credit_fee_amount, credit_user_id, credit_user_amount, debit_cost_id, debit_cost_amount, debit_user_id, debit_user_amount"

// ReplaceAmount writes the breakdown for its (task, client) pair, replacing
// any stored row. The last write wins.
func (s *Store) ReplaceAmount(ctx context.Context, amount *Amount) error {
	if amount == nil {
		return errors.New("amount is nil")
	}
	_, err := s.db.ExecContext(ensureContext(ctx),
		`INSERT OR REPLACE INTO amounts (`+amountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		amount.TaskID,
		amount.ClientID,
		amount.CreditRevenue.ID,
		amount.CreditRevenue.Amount,
		amount.CreditFee.ID,
		amount.CreditFee.Amount,
		amount.CreditUser.ID,
		amount.CreditUser.Amount,
		amount.DebitCost.ID,
		amount.DebitCost.Amount,
		amount.DebitUser.ID,
		amount.DebitUser.Amount,
	)
	if err != nil {
		return fmt.Errorf("replace amount for task %d: %w", amount.TaskID, err)
	}
	return nil
}

// GetAmount returns the stored breakdown or nil when absent.
func (s *Store) GetAmount(ctx context.Context, taskID, clientID int64) (*Amount, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+amountColumns+" FROM amounts WHERE task_id = ? AND client_id = ?", taskID, clientID)
	amount, err := scanAmount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get amount for task %d: %w", taskID, err)
	}
	return amount, nil
}

// SumAmounts totals every stored breakdown using decimal arithmetic.
func (s *Store) SumAmounts(ctx context.Context) (AmountTotals, error) {
	var totals AmountTotals
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT "+amountColumns+" FROM amounts")
	if err != nil {
		return totals, fmt.Errorf("sum amounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		amount, err := scanAmount(rows)
		if err != nil {
			return totals, fmt.Errorf("scan amount: %w", err)
		}
		totals.Rows++
		totals.CreditRevenue = totals.CreditRevenue.Add(amount.CreditRevenue.Amount)
		totals.CreditFee = totals.CreditFee.Add(amount.CreditFee.Amount)
		totals.CreditUser = totals.CreditUser.Add(amount.CreditUser.Amount)
		totals.DebitCost = totals.DebitCost.Add(amount.DebitCost.Amount)
		totals.DebitUser = totals.DebitUser.Add(amount.DebitUser.Amount)
	}
	if err := rows.Err(); err != nil {
		return totals, fmt.Errorf("iterate amounts: %w", err)
	}
	return totals, nil
}

func scanAmount(scanner interface{ Scan(dest ...any) error }) (*Amount, error) {
	var amount Amount
	if err := scanner.Scan(
		&amount.TaskID,
		&amount.ClientID,
		&amount.CreditRevenue.ID,
		&amount.CreditRevenue.Amount,
		&amount.CreditFee.ID,
		&amount.CreditFee.Amount,
		&amount.CreditUser.ID,
		&amount.CreditUser.Amount,
		&amount.DebitCost.ID,
		&amount.DebitCost.Amount,
		&amount.DebitUser.ID,
		&amount.DebitUser.Amount,
	); err != nil {
		return nil, err
	}
	return &amount, nil
}
