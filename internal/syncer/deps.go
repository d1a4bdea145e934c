package syncer

import (
	"context"
	"encoding/json"

	"expertstats/internal/services/codeable"
	"expertstats/internal/store"
)

// Remote fetches account data from the platform API.
type Remote interface {
	Self(ctx context.Context) (json.RawMessage, error)
	TransactionsPage(ctx context.Context, page int) (*codeable.TransactionsPage, error)
	TasksPage(ctx context.Context, filter string, page int) ([]codeable.Task, error)
}

// SessionGuard rejects remote work when no authenticated session exists.
type SessionGuard interface {
	RequireSession(reason string) error
}

// Settings is the singleton key-value store.
type Settings interface {
	GetSetting(ctx context.Context, key string, dest any) (bool, error)
	SetSetting(ctx context.Context, key string, value any) error
	DeleteSetting(ctx context.Context, key string) error
}

// Cache drops cached views of synced data.
type Cache interface {
	Flush() error
}

// Records is the table-scoped relational store.
type Records interface {
	TransactionExists(ctx context.Context, id int64) (bool, error)
	InsertTransaction(ctx context.Context, txn *store.Transaction) error
	UpdateTransaction(ctx context.Context, txn *store.Transaction) error

	TaskExists(ctx context.Context, taskID int64) (bool, error)
	InsertTask(ctx context.Context, task *store.Task) error
	UpdateTask(ctx context.Context, task *store.Task) error
	MarkTasksLost(ctx context.Context, state string) (int64, error)

	ClientExists(ctx context.Context, clientID int64) (bool, error)
	InsertClient(ctx context.Context, client *store.Client) error
	UpdateClient(ctx context.Context, client *store.Client) error

	ReplaceAmount(ctx context.Context, amount *store.Amount) error
}

var (
	_ Remote       = (*codeable.Client)(nil)
	_ SessionGuard = (*codeable.Client)(nil)
	_ Settings     = (*store.Store)(nil)
	_ Records      = (*store.Store)(nil)
)
