package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Setting keys shared by the sync pipeline and the CLI.
const (
	SettingAccountDetails    = "account_details"
	SettingAverage           = "average"
	SettingBalance           = "balance"
	SettingRevenue           = "revenue"
	SettingCancelAfterDays   = "cancel_after_days"
	SettingAuthToken         = "auth_token"
	SettingSyncCursor        = "sync_cursor"
	SettingLastSyncCompleted = "last_sync_completed"
)

// GetSetting decodes the stored JSON value for key into dest. It reports
// false and leaves dest untouched when the key has never been set.
func (s *Store) GetSetting(ctx context.Context, key string, dest any) (bool, error) {
	raw, found, err := s.GetSettingRaw(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode setting %q: %w", key, err)
	}
	return true, nil
}

// GetSettingRaw returns the stored JSON document for key.
func (s *Store) GetSettingRaw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, errors.New("setting key must not be empty")
	}
	var value string
	err := s.db.QueryRowContext(ensureContext(ctx), "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read setting %q: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// SetSetting stores value for key as JSON, replacing any previous value.
// json.RawMessage values are stored verbatim.
func (s *Store) SetSetting(ctx context.Context, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("setting key must not be empty")
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ensureContext(ctx),
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(encoded), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write setting %q: %w", key, err)
	}
	return nil
}

// DeleteSetting removes key. Deleting an absent key is not an error.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ensureContext(ctx), "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// ListSettingKeys returns every stored key in alphabetical order.
func (s *Store) ListSettingKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT key FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan setting key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
