package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"expertstats/internal/store"
)

const summaryKey = "summary"

// Source is the read side of the store used by reports.
type Source interface {
	CountTasksByFlag(ctx context.Context) (map[store.Flag]int, error)
	CountTransactions(ctx context.Context) (int, error)
	CountClients(ctx context.Context) (int, error)
	SumAmounts(ctx context.Context) (store.AmountTotals, error)
	GetSetting(ctx context.Context, key string, dest any) (bool, error)
}

// ViewCache stores computed views.
type ViewCache interface {
	Lookup(key string, dest any) (bool, error)
	Store(key string, value any) error
}

// Summary is the account overview shown by `expertstats stats`.
type Summary struct {
	GeneratedAt       time.Time       `json:"generated_at"`
	Tasks             int             `json:"tasks"`
	FlagCounts        map[string]int  `json:"flag_counts"`
	Transactions      int             `json:"transactions"`
	Clients           int             `json:"clients"`
	CreditRevenue     decimal.Decimal `json:"credit_revenue"`
	CreditFee         decimal.Decimal `json:"credit_fee"`
	CreditUser        decimal.Decimal `json:"credit_user"`
	DebitCost         decimal.Decimal `json:"debit_cost"`
	DebitUser         decimal.Decimal `json:"debit_user"`
	AverageTaskSize   decimal.Decimal `json:"average_task_size"`
	Balance           decimal.Decimal `json:"balance"`
	Revenue           decimal.Decimal `json:"revenue"`
	LastSyncCompleted string          `json:"last_sync_completed,omitempty"`
}

// WinRate returns won and completed tasks as a share of all flagged tasks.
func (s *Summary) WinRate() decimal.Decimal {
	var flagged, wins int
	for flag, count := range s.FlagCounts {
		if flag == string(store.FlagUnset) {
			continue
		}
		flagged += count
		if flag == string(store.FlagWon) || flag == string(store.FlagCompleted) {
			wins += count
		}
	}
	if flagged == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(flagged)))
}

// Builder computes report views, reusing cached ones when present.
type Builder struct {
	source Source
	cache  ViewCache
	now    func() time.Time
}

// NewBuilder constructs a Builder. A nil cache disables caching.
func NewBuilder(source Source, cache ViewCache) *Builder {
	return &Builder{source: source, cache: cache, now: time.Now}
}

// Summary returns the account summary and whether it came from the cache.
func (b *Builder) Summary(ctx context.Context) (*Summary, bool, error) {
	if b.cache != nil {
		var cached Summary
		found, err := b.cache.Lookup(summaryKey, &cached)
		if err == nil && found {
			return &cached, true, nil
		}
	}

	summary, err := b.compute(ctx)
	if err != nil {
		return nil, false, err
	}
	if b.cache != nil {
		if err := b.cache.Store(summaryKey, summary); err != nil {
			return summary, false, fmt.Errorf("cache summary: %w", err)
		}
	}
	return summary, false, nil
}

func (b *Builder) compute(ctx context.Context) (*Summary, error) {
	counts, err := b.source.CountTasksByFlag(ctx)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		GeneratedAt: b.now().UTC(),
		FlagCounts:  make(map[string]int, len(counts)),
	}
	for flag, count := range counts {
		summary.FlagCounts[string(flag)] = count
		summary.Tasks += count
	}
	if summary.Transactions, err = b.source.CountTransactions(ctx); err != nil {
		return nil, err
	}
	if summary.Clients, err = b.source.CountClients(ctx); err != nil {
		return nil, err
	}
	totals, err := b.source.SumAmounts(ctx)
	if err != nil {
		return nil, err
	}
	summary.CreditRevenue = totals.CreditRevenue
	summary.CreditFee = totals.CreditFee
	summary.CreditUser = totals.CreditUser
	summary.DebitCost = totals.DebitCost
	summary.DebitUser = totals.DebitUser

	settings := []struct {
		key  string
		dest any
	}{
		{store.SettingAverage, &summary.AverageTaskSize},
		{store.SettingBalance, &summary.Balance},
		{store.SettingRevenue, &summary.Revenue},
		{store.SettingLastSyncCompleted, &summary.LastSyncCompleted},
	}
	for _, setting := range settings {
		if _, err := b.source.GetSetting(ctx, setting.key, setting.dest); err != nil {
			return nil, fmt.Errorf("read %s: %w", setting.key, err)
		}
	}
	return summary, nil
}
