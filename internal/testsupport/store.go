package testsupport

import (
	"context"
	"testing"

	"expertstats/internal/config"
	"expertstats/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustSetSetting stores a setting value or fails the test.
func MustSetSetting(t testing.TB, st *store.Store, key string, value any) {
	t.Helper()

	if err := st.SetSetting(context.Background(), key, value); err != nil {
		t.Fatalf("store.SetSetting(%s): %v", key, err)
	}
}

// MustInsertTask stores a task row or fails the test.
func MustInsertTask(t testing.TB, st *store.Store, task *store.Task) {
	t.Helper()

	if err := st.InsertTask(context.Background(), task); err != nil {
		t.Fatalf("store.InsertTask(%d): %v", task.TaskID, err)
	}
}
