package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const clientColumns = "client_id, full_name, role, last_sign_in, pro, timezone, tiny, small, medium, large, last_sync"

// ClientExists reports whether a client with the id is stored.
func (s *Store) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	found, err := s.exists(ctx, "SELECT COUNT(1) FROM clients WHERE client_id = ?", clientID)
	if err != nil {
		return false, fmt.Errorf("check client %d: %w", clientID, err)
	}
	return found, nil
}

// InsertClient stores a new client.
func (s *Store) InsertClient(ctx context.Context, client *Client) error {
	if client == nil {
		return errors.New("client is nil")
	}
	_, err := s.db.ExecContext(ensureContext(ctx),
		`INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ClientID,
		client.FullName,
		client.Role,
		nullableTime(client.LastSignIn),
		boolToInt(client.Pro),
		client.TimezoneOffset,
		client.Tiny,
		client.Small,
		client.Medium,
		client.Large,
		client.LastSync,
	)
	if err != nil {
		return fmt.Errorf("insert client %d: %w", client.ClientID, err)
	}
	return nil
}

// UpdateClient rewrites every column of an existing client.
func (s *Store) UpdateClient(ctx context.Context, client *Client) error {
	if client == nil {
		return errors.New("client is nil")
	}
	_, err := s.db.ExecContext(ensureContext(ctx),
		`UPDATE clients SET
			full_name = ?, role = ?, last_sign_in = ?, pro = ?, timezone = ?,
			tiny = ?, small = ?, medium = ?, large = ?, last_sync = ?
		WHERE client_id = ?`,
		client.FullName,
		client.Role,
		nullableTime(client.LastSignIn),
		boolToInt(client.Pro),
		client.TimezoneOffset,
		client.Tiny,
		client.Small,
		client.Medium,
		client.Large,
		client.LastSync,
		client.ClientID,
	)
	if err != nil {
		return fmt.Errorf("update client %d: %w", client.ClientID, err)
	}
	return nil
}

// GetClient returns the stored client or nil when absent.
func (s *Store) GetClient(ctx context.Context, clientID int64) (*Client, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+clientColumns+" FROM clients WHERE client_id = ?", clientID)
	var (
		client     Client
		lastSignIn sql.NullString
		pro        int
	)
	err := row.Scan(
		&client.ClientID,
		&client.FullName,
		&client.Role,
		&lastSignIn,
		&pro,
		&client.TimezoneOffset,
		&client.Tiny,
		&client.Small,
		&client.Medium,
		&client.Large,
		&client.LastSync,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client %d: %w", clientID, err)
	}
	client.Pro = pro != 0
	client.LastSignIn = nullTimePtr(lastSignIn)
	return &client, nil
}

// CountClients returns the number of stored clients.
func (s *Store) CountClients(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM clients").Scan(&count); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return count, nil
}
