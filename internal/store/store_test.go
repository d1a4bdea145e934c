package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expertstats/internal/store"
	"expertstats/internal/testsupport"
)

func int64Ptr(v int64) *int64    { return &v }
func stringPtr(v string) *string { return &v }

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if st.Path() != cfg.DatabasePath() {
		t.Fatalf("expected path %q, got %q", cfg.DatabasePath(), st.Path())
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	_ = reopened.Close()
}

func TestTransactionInsertUpdateRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	txn := &store.Transaction{
		ID:            77,
		Description:   "task_completion",
		DateAdded:     time.Unix(1700000000, 0).UTC(),
		FeePercentage: decimal.RequireFromString("17.5"),
		FeeAmount:     decimal.NewFromInt(35),
		TaskType:      "task",
		TaskID:        9,
		TaskTitle:     "Fix site",
		Preferred:     true,
		ClientID:      5,
		LastSync:      100,
	}
	exists, err := st.TransactionExists(ctx, txn.ID)
	if err != nil || exists {
		t.Fatalf("expected transaction to be absent, exists=%v err=%v", exists, err)
	}
	if err := st.InsertTransaction(ctx, txn); err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}
	if err := st.InsertTransaction(ctx, txn); err == nil {
		t.Fatal("expected duplicate insert to fail")
	}

	txn.LastSync = 200
	txn.Description = "updated"
	if err := st.UpdateTransaction(ctx, txn); err != nil {
		t.Fatalf("UpdateTransaction failed: %v", err)
	}

	fetched, err := st.GetTransaction(ctx, 77)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if fetched == nil || fetched.Description != "updated" || fetched.LastSync != 200 {
		t.Fatalf("unexpected transaction: %#v", fetched)
	}
	if !fetched.DateAdded.Equal(txn.DateAdded) || !fetched.FeePercentage.Equal(txn.FeePercentage) || !fetched.Preferred {
		t.Fatalf("round trip mismatch: %#v", fetched)
	}
	count, err := st.CountTransactions(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 transaction, got %d (err=%v)", count, err)
	}
	missing, err := st.GetTransaction(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing transaction, got %#v err=%v", missing, err)
	}
}

func TestUpdateTaskPreservesUnsetOptionalColumns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.MustInsertTask(t, st, &store.Task{
		TaskID:         10,
		Title:          "Original",
		State:          "completed",
		LastActivity:   int64Ptr(1700000000),
		LastActivityBy: stringPtr("Jane Client"),
		Flag:           store.FlagCompleted,
	})

	if err := st.UpdateTask(ctx, &store.Task{TaskID: 10, Title: "Renamed", State: "completed", LastSync: 5}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	task, err := st.GetTask(ctx, 10)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task.Title != "Renamed" || task.LastSync != 5 {
		t.Fatalf("expected merged columns, got %#v", task)
	}
	if task.LastActivity == nil || *task.LastActivity != 1700000000 {
		t.Fatalf("expected last_activity preserved, got %v", task.LastActivity)
	}
	if task.LastActivityBy == nil || *task.LastActivityBy != "Jane Client" {
		t.Fatalf("expected last_activity_by preserved, got %v", task.LastActivityBy)
	}
	if task.Flag != store.FlagCompleted {
		t.Fatalf("expected flag preserved, got %q", task.Flag)
	}

	if err := st.UpdateTask(ctx, &store.Task{TaskID: 10, State: "completed", Flag: store.FlagLost}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	task, _ = st.GetTask(ctx, 10)
	if task.Flag != store.FlagLost {
		t.Fatalf("expected flag overwritten, got %q", task.Flag)
	}
}

func TestMarkTasksLostIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	states := map[int64]string{1: "published", 2: "estimated", 3: "hired", 4: "completed", 5: "paid"}
	for id, state := range states {
		testsupport.MustInsertTask(t, st, &store.Task{TaskID: id, State: state, Estimate: true, Promoted: true, Favored: true})
	}

	run := func() {
		for _, state := range []string{"published", "estimated", "hired"} {
			if _, err := st.MarkTasksLost(ctx, state); err != nil {
				t.Fatalf("MarkTasksLost(%s) failed: %v", state, err)
			}
		}
	}
	run()
	first, err := st.ListTasks(ctx, store.TaskFilter{State: "lost"})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	run()
	second, err := st.ListTasks(ctx, store.TaskFilter{State: "lost"})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 lost tasks both times, got %d and %d", len(first), len(second))
	}
	for _, task := range second {
		if !task.Hidden || task.Estimate || task.Promoted || task.Favored || task.Subscribed || task.Preferred {
			t.Fatalf("unexpected flags on lost task: %#v", task)
		}
	}
	affected, err := st.MarkTasksLost(ctx, "published")
	if err != nil || affected != 0 {
		t.Fatalf("expected zero rows on repeat, got %d (err=%v)", affected, err)
	}
	kept, _ := st.GetTask(ctx, 4)
	if kept.State != "completed" || kept.Hidden {
		t.Fatalf("completed task should be untouched: %#v", kept)
	}
}

func TestReplaceAmountLastWriteWins(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := &store.Amount{TaskID: 9, ClientID: 5, CreditRevenue: store.LineItem{ID: 1, Amount: decimal.NewFromInt(200)}}
	second := &store.Amount{TaskID: 9, ClientID: 5, CreditRevenue: store.LineItem{ID: 2, Amount: decimal.RequireFromString("250.75")}}
	if err := st.ReplaceAmount(ctx, first); err != nil {
		t.Fatalf("ReplaceAmount failed: %v", err)
	}
	if err := st.ReplaceAmount(ctx, second); err != nil {
		t.Fatalf("ReplaceAmount failed: %v", err)
	}
	amount, err := st.GetAmount(ctx, 9, 5)
	if err != nil {
		t.Fatalf("GetAmount failed: %v", err)
	}
	if amount.CreditRevenue.ID != 2 || amount.CreditRevenue.Amount.String() != "250.75" {
		t.Fatalf("expected second write to win, got %#v", amount.CreditRevenue)
	}
	totals, err := st.SumAmounts(ctx)
	if err != nil {
		t.Fatalf("SumAmounts failed: %v", err)
	}
	if totals.Rows != 1 || totals.CreditRevenue.String() != "250.75" {
		t.Fatalf("unexpected totals: %#v", totals)
	}
}

func TestClientUpsertPrimitives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	signIn := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	client := &store.Client{ClientID: 5, FullName: "Jane Client", LastSignIn: &signIn, Pro: true, Tiny: "t.png"}
	if err := st.InsertClient(ctx, client); err != nil {
		t.Fatalf("InsertClient failed: %v", err)
	}
	client.FullName = "Jane C."
	client.LastSignIn = nil
	if err := st.UpdateClient(ctx, client); err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	fetched, err := st.GetClient(ctx, 5)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if fetched.FullName != "Jane C." || !fetched.Pro || fetched.LastSignIn != nil || fetched.Tiny != "t.png" {
		t.Fatalf("unexpected client: %#v", fetched)
	}
	count, err := st.CountClients(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 client, got %d (err=%v)", count, err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	var days int
	found, err := st.GetSetting(ctx, store.SettingCancelAfterDays, &days)
	if err != nil || found {
		t.Fatalf("expected missing setting, found=%v err=%v", found, err)
	}

	testsupport.MustSetSetting(t, st, store.SettingCancelAfterDays, 30)
	testsupport.MustSetSetting(t, st, store.SettingAccountDetails, json.RawMessage(`{"id":1,"full_name":"Me"}`))
	testsupport.MustSetSetting(t, st, store.SettingBalance, decimal.RequireFromString("100.50"))

	if found, err := st.GetSetting(ctx, store.SettingCancelAfterDays, &days); err != nil || !found || days != 30 {
		t.Fatalf("expected 30 days, got %d found=%v err=%v", days, found, err)
	}
	var balance decimal.Decimal
	if _, err := st.GetSetting(ctx, store.SettingBalance, &balance); err != nil || balance.String() != "100.5" {
		t.Fatalf("unexpected balance %s (err=%v)", balance, err)
	}
	raw, found, err := st.GetSettingRaw(ctx, store.SettingAccountDetails)
	if err != nil || !found || string(raw) != `{"id":1,"full_name":"Me"}` {
		t.Fatalf("unexpected account details %s (err=%v)", raw, err)
	}
	keys, err := st.ListSettingKeys(ctx)
	if err != nil || len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %v (err=%v)", keys, err)
	}
	if err := st.DeleteSetting(ctx, store.SettingBalance); err != nil {
		t.Fatalf("DeleteSetting failed: %v", err)
	}
	if _, found, _ := st.GetSettingRaw(ctx, store.SettingBalance); found {
		t.Fatal("expected balance removed")
	}
	if err := st.SetSetting(ctx, " ", 1); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestCountTasksByFlag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 1, Flag: store.FlagWon})
	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 2, Flag: store.FlagWon})
	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 3, Flag: store.FlagLost})
	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 4})

	counts, err := st.CountTasksByFlag(ctx)
	if err != nil {
		t.Fatalf("CountTasksByFlag failed: %v", err)
	}
	if counts[store.FlagWon] != 2 || counts[store.FlagLost] != 1 || counts[store.FlagUnset] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	won, err := st.ListTasks(ctx, store.TaskFilter{Flag: store.FlagWon, Limit: 1})
	if err != nil || len(won) != 1 {
		t.Fatalf("expected limited list of 1, got %d (err=%v)", len(won), err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if err := st.SetSetting(context.Background(), "probe", true); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	_ = st.Close()

	raw, err := store.OpenPath(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := raw.ExecForTest(context.Background(), "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = raw.Close()

	if _, err := store.Open(cfg); !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
