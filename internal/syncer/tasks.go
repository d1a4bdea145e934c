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

// lostStates are the open states demoted by the lost transition.
var lostStates = []string{"published", "estimated", "hired"}

// markTasksLost demotes every open task. One update per state; zero matches
// is not an error.
func (p *Processor) markTasksLost(ctx context.Context, logger *slog.Logger) error {
	var total int64
	for _, state := range lostStates {
		affected, err := p.records.MarkTasksLost(ctx, state)
		if err != nil {
			return services.Wrap(services.ErrStorage, TaskLost, "mark "+state+" tasks lost", "", err)
		}
		total += affected
	}
	logger.Info("open tasks marked lost",
		logging.String(logging.FieldEventType, "tasks_marked_lost"),
		logging.Int64("tasks", total),
	)
	return nil
}

// storeTasks stores one page of a filtered task list and returns the next
// page number, or 0 when the page was empty.
func (p *Processor) storeTasks(ctx context.Context, logger *slog.Logger, filter string, page int) (int, error) {
	if err := p.guard.RequireSession(sessionReason); err != nil {
		return 0, err
	}
	tasks, err := p.remote.TasksPage(ctx, filter, page)
	if err != nil {
		return 0, fmt.Errorf("fetch %s tasks page %d: %w", filter, page, err)
	}
	staleHours, err := p.staleHours(ctx)
	if err != nil {
		return 0, fmt.Errorf("read stale threshold: %w", err)
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	now := p.now()
	for _, task := range tasks {
		if err := p.upsertTask(ctx, logger, task, now, staleHours); err != nil {
			return 0, err
		}
		if err := p.storeClient(ctx, logger, task.Client, now); err != nil {
			return 0, err
		}
	}
	return page + 1, nil
}

func (p *Processor) upsertTask(ctx context.Context, logger *slog.Logger, task codeable.Task, now time.Time, staleHours int64) error {
	record := normalizeTask(task, now)
	record.Flag = Classify(record, now, staleHours)

	if !task.ID.Valid() {
		logger.Debug("task without id skipped",
			logging.String(logging.FieldEventType, "record_skipped"),
			logging.String("entity", "task"),
		)
		return nil
	}

	exists, err := p.records.TaskExists(ctx, record.TaskID)
	if err != nil {
		return writeFailure("task", record.TaskID, err)
	}
	if exists {
		err = p.records.UpdateTask(ctx, record)
	} else {
		err = p.records.InsertTask(ctx, record)
	}
	if err != nil {
		return writeFailure("task", record.TaskID, err)
	}
	return nil
}

func normalizeTask(task codeable.Task, now time.Time) *store.Task {
	record := &store.Task{
		TaskID:      int64(task.ID),
		ClientID:    clientID(task.Client),
		Title:       task.Title,
		Estimate:    bool(task.Estimatable),
		Hidden:      bool(task.HiddenByCurrentUser),
		Promoted:    bool(task.PromotedTask),
		Subscribed:  bool(task.SubscribedByCurrentUser),
		Favored:     bool(task.FavoredByCurrentUser),
		Preferred:   bool(task.CurrentUserIsPreferredContractor),
		ClientFee:   task.Prices.ClientFeePercentage.Decimal,
		State:       task.State,
		Kind:        task.Kind,
		Value:       task.Prices.ContractorEarnings.Decimal,
		ValueClient: task.Prices.ClientPriceAfterDiscounts.Decimal,
		LastSync:    now.Unix(),
	}

	event := task.LastEvent
	if event == nil {
		return record
	}
	if event.Object != nil {
		var activity int64
		switch {
		case event.Object.Timestamp != 0:
			activity = int64(event.Object.Timestamp)
		case event.Object.PublishedAt != 0:
			activity = int64(event.Object.PublishedAt)
		}
		if activity != 0 {
			blank := ""
			record.LastActivity = &activity
			record.LastActivityBy = &blank
		}
	}
	if event.User != nil && event.User.FullName != "" {
		actor := event.User.FullName
		record.LastActivityBy = &actor
	}
	return record
}
