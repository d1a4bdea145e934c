package syncer

import (
	"context"
	"log/slog"

	"expertstats/internal/logging"
	"expertstats/internal/services/codeable"
	"expertstats/internal/store"
)

// storeAmount replaces the payout breakdown for a task and client. Tasks
// without a valid id are ignored.
func (p *Processor) storeAmount(ctx context.Context, logger *slog.Logger, taskID codeable.ID, clientID int64, credit codeable.Credit, debit codeable.Debit) error {
	if !taskID.Valid() {
		logger.Debug("amount without task id skipped",
			logging.String(logging.FieldEventType, "record_skipped"),
			logging.String("entity", "amount"),
		)
		return nil
	}
	amount := &store.Amount{
		TaskID:        int64(taskID),
		ClientID:      clientID,
		CreditRevenue: lineItem(credit.Revenue),
		CreditFee:     lineItem(credit.Fee),
		CreditUser:    lineItem(credit.User),
		DebitCost:     lineItem(debit.Cost),
		DebitUser:     lineItem(debit.User),
	}
	if err := p.records.ReplaceAmount(ctx, amount); err != nil {
		return writeFailure("amount for task", amount.TaskID, err)
	}
	return nil
}

func lineItem(item codeable.LineItem) store.LineItem {
	return store.LineItem{ID: int64(item.ID), Amount: item.Amount.Decimal}
}
