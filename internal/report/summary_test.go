package report_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"expertstats/internal/report"
	"expertstats/internal/store"
	"expertstats/internal/testsupport"
	"expertstats/internal/viewcache"
)

func TestSummaryComputesAndCaches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 1, Flag: store.FlagWon})
	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 2, Flag: store.FlagLost})
	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 3, Flag: store.FlagCompleted})
	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 4})
	if err := st.ReplaceAmount(ctx, &store.Amount{TaskID: 1, ClientID: 5, CreditUser: store.LineItem{ID: 1, Amount: decimal.RequireFromString("165.25")}}); err != nil {
		t.Fatalf("ReplaceAmount failed: %v", err)
	}
	testsupport.MustSetSetting(t, st, store.SettingBalance, decimal.NewFromInt(100))

	cache := viewcache.NewCache(cfg.ViewCachePath(), nil)
	builder := report.NewBuilder(st, cache)

	summary, cached, err := builder.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if cached {
		t.Fatal("first summary should be computed")
	}
	if summary.Tasks != 4 || summary.FlagCounts["won"] != 1 || summary.FlagCounts[""] != 1 {
		t.Fatalf("unexpected counts %+v", summary.FlagCounts)
	}
	if summary.CreditUser.String() != "165.25" || summary.Balance.String() != "100" {
		t.Fatalf("unexpected money %s %s", summary.CreditUser, summary.Balance)
	}
	if rate := summary.WinRate(); !rate.Equal(decimal.RequireFromString("2").Div(decimal.RequireFromString("3"))) {
		t.Fatalf("unexpected win rate %s", rate)
	}

	testsupport.MustInsertTask(t, st, &store.Task{TaskID: 5, Flag: store.FlagWon})
	again, cached, err := builder.Summary(ctx)
	if err != nil || !cached || again.Tasks != 4 {
		t.Fatalf("expected cached summary, cached=%v tasks=%d err=%v", cached, again.Tasks, err)
	}

	if err := cache.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	fresh, cached, err := builder.Summary(ctx)
	if err != nil || cached || fresh.Tasks != 5 {
		t.Fatalf("expected recomputed summary, cached=%v tasks=%d err=%v", cached, fresh.Tasks, err)
	}
}
