package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expertstats/internal/logging"
	"expertstats/internal/services"
	"expertstats/internal/services/codeable"
	"expertstats/internal/store"
)

// storeTransactions stores one transactions page and returns the next page
// number, or 0 when the page was empty.
func (p *Processor) storeTransactions(ctx context.Context, logger *slog.Logger, page int) (int, error) {
	if err := p.guard.RequireSession(sessionReason); err != nil {
		return 0, err
	}
	resp, err := p.remote.TransactionsPage(ctx, page)
	if err != nil {
		return 0, fmt.Errorf("fetch transactions page %d: %w", page, err)
	}
	if resp == nil {
		resp = &codeable.TransactionsPage{}
	}

	if page == aggregatesPage {
		aggregates := []struct {
			key   string
			value *codeable.Number
		}{
			{settingAverage, resp.AverageTaskSize},
			{settingBalance, resp.Balance},
			{settingRevenue, resp.Revenue},
		}
		for _, agg := range aggregates {
			// Absent aggregates are stored as null, not zero.
			var value any
			if agg.value != nil {
				value = agg.value.Decimal
			}
			if err := p.settings.SetSetting(ctx, agg.key, value); err != nil {
				return 0, services.Wrap(services.ErrStorage, TaskTransactions, "write "+agg.key+" setting", "", err)
			}
		}
	}

	if len(resp.Transactions) == 0 {
		return 0, nil
	}

	now := p.now()
	for _, tr := range resp.Transactions {
		if err := p.upsertTransaction(ctx, logger, tr, now); err != nil {
			return 0, err
		}
		if err := p.storeClient(ctx, logger, tr.TaskClient, now); err != nil {
			return 0, err
		}
		if err := p.storeAmount(ctx, logger, tr.Task.ID, clientID(tr.TaskClient), tr.CreditAmounts, tr.DebitAmounts); err != nil {
			return 0, err
		}
	}
	return page + 1, nil
}

func (p *Processor) upsertTransaction(ctx context.Context, logger *slog.Logger, tr codeable.Transaction, now time.Time) error {
	if !tr.ID.Valid() {
		logger.Debug("transaction without id skipped",
			logging.String(logging.FieldEventType, "record_skipped"),
			logging.String("entity", "transaction"),
		)
		return nil
	}
	record := normalizeTransaction(tr, now)

	exists, err := p.records.TransactionExists(ctx, record.ID)
	if err != nil {
		return writeFailure("transaction", record.ID, err)
	}
	if exists {
		err = p.records.UpdateTransaction(ctx, record)
	} else {
		err = p.records.InsertTransaction(ctx, record)
	}
	if err != nil {
		return writeFailure("transaction", record.ID, err)
	}
	return nil
}

func normalizeTransaction(tr codeable.Transaction, now time.Time) *store.Transaction {
	record := &store.Transaction{
		ID:            int64(tr.ID),
		Description:   tr.Description,
		FeePercentage: tr.FeePercentage.Decimal,
		FeeAmount:     tr.FeeAmount.Decimal,
		TaskType:      tr.Task.Kind,
		TaskID:        int64(tr.Task.ID),
		TaskTitle:     tr.Task.Title,
		ParentTaskID:  max(0, int64(tr.Task.ParentTaskID)),
		Preferred:     bool(tr.Task.CurrentUserIsPreferredContractor),
		ClientID:      clientID(tr.TaskClient),
		LastSync:      now.Unix(),
	}
	if tr.Timestamp != 0 {
		record.DateAdded = time.Unix(int64(tr.Timestamp), 0).UTC()
	}
	return record
}

func clientID(client *codeable.ClientInfo) int64 {
	if client == nil {
		return 0
	}
	return int64(client.ID)
}

// writeFailure builds the fatal error returned for a failed row write.
func writeFailure(entity string, id int64, err error) error {
	return services.Wrap(services.ErrStorage, "", fmt.Sprintf("write %s %d", entity, id), "", err)
}
