package store

import (
	"database/sql"
	"errors"
	"time"
)

const dateTimeLayout = "2006-01-02 15:04:05"

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return value.UTC().Format(dateTimeLayout)
}

func nullableInt(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func formatDateTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(dateTimeLayout)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(dateTimeLayout, value)
}

func nullTimePtr(raw sql.NullString) *time.Time {
	if !raw.Valid {
		return nil
	}
	parsed, err := parseTimeString(raw.String)
	if err != nil {
		return nil
	}
	return &parsed
}
