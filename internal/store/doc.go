// Package store persists synced account data in SQLite.
//
// Four entity tables mirror the remote account: transactions, tasks, clients,
// and per-task payout amounts. A settings table holds singleton JSON values
// such as the account profile, the transaction aggregates, and the sync
// cursor. Entities are keyed by their external identifiers and are only ever
// written by the sync pipeline; nothing is deleted.
//
// The schema is embedded and versioned. A version mismatch is reported as
// ErrSchemaMismatch and the user deletes the database to adopt the new
// schema; there are no migrations.
package store
