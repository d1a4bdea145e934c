package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"expertstats/internal/logging"
	"expertstats/internal/services"
)

// Cursor records where an interrupted run stopped.
type Cursor struct {
	RunID string `json:"run_id"`
	Index int    `json:"index"`
	Step  Step   `json:"step"`
}

// Progress reports a processed step to the caller.
type Progress struct {
	Index int
	Total int
	Step  Step
	Next  *Step
}

// Done reports whether the processed step finished.
func (p Progress) Done() bool { return p.Next == nil }

// Result summarizes a completed run.
type Result struct {
	RunID     string
	Resumed   bool
	Steps     int
	Pages     int
	StartedAt time.Time
	Duration  time.Duration
}

// Runner drives the full queue through a Processor.
type Runner struct {
	processor *Processor
	settings  Settings
	logger    *slog.Logger
	progress  func(Progress)
	now       func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithProgress registers a callback invoked after every processed step.
func WithProgress(fn func(Progress)) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
	}
}

// WithRunnerLogger sets the base logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner constructs a Runner persisting its cursor in settings.
func NewRunner(processor *Processor, settings Settings, opts ...RunnerOption) *Runner {
	r := &Runner{
		processor: processor,
		settings:  settings,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	if processor != nil {
		r.now = processor.now
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "sync-runner")
	return r
}

// Run processes every queue step in order. With resume set, a stored cursor
// restarts the queue at the step that was pending when the previous run
// stopped. The cursor is written after every step and cleared on success.
func (r *Runner) Run(ctx context.Context, resume bool) (*Result, error) {
	if r.processor == nil || r.settings == nil {
		return nil, errors.New("syncer: runner requires a processor and settings")
	}
	queue := BuildQueue()
	result := &Result{RunID: uuid.NewString(), StartedAt: r.now()}

	index := 0
	current := queue[0]
	if resume {
		cursor, found, err := r.loadCursor(ctx)
		if err != nil {
			return nil, err
		}
		if found && cursor.Index >= 0 && cursor.Index < len(queue) && cursor.Step.Task == queue[cursor.Index].Task {
			index = cursor.Index
			current = cursor.Step
			result.Resumed = true
		}
	}

	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("sync started",
		logging.String(logging.FieldEventType, "sync_start"),
		logging.Bool("resumed", result.Resumed),
		logging.String("first_step", current.String()),
	)

	for index < len(queue) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := r.saveCursor(ctx, Cursor{RunID: result.RunID, Index: index, Step: current}); err != nil {
			return result, err
		}

		next, err := r.processor.Process(ctx, current)
		if err != nil {
			result.Duration = time.Since(result.StartedAt)
			return result, err
		}
		result.Pages++
		if r.progress != nil {
			r.progress(Progress{Index: index, Total: len(queue), Step: current, Next: next})
		}

		if next != nil {
			current = *next
			continue
		}
		result.Steps++
		index++
		if index < len(queue) {
			current = queue[index]
		}
	}

	if err := r.settings.DeleteSetting(ctx, settingSyncCursor); err != nil {
		return result, services.Wrap(services.ErrStorage, "", "clear sync cursor", "", err)
	}
	completed := r.now().UTC().Format(time.RFC3339)
	if err := r.settings.SetSetting(ctx, settingLastSyncCompleted, completed); err != nil {
		return result, services.Wrap(services.ErrStorage, "", "record sync completion", "", err)
	}
	result.Duration = time.Since(result.StartedAt)
	logger.Info("sync finished",
		logging.String(logging.FieldEventType, "sync_complete"),
		logging.Int("steps", result.Steps),
		logging.Int("pages", result.Pages),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// PendingCursor returns the stored cursor of an interrupted run, if any.
func PendingCursor(ctx context.Context, settings Settings) (*Cursor, error) {
	var cursor Cursor
	found, err := settings.GetSetting(ctx, settingSyncCursor, &cursor)
	if err != nil {
		return nil, fmt.Errorf("read sync cursor: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &cursor, nil
}

func (r *Runner) loadCursor(ctx context.Context) (Cursor, bool, error) {
	cursor, err := PendingCursor(ctx, r.settings)
	if err != nil || cursor == nil {
		return Cursor{}, false, err
	}
	return *cursor, true, nil
}

func (r *Runner) saveCursor(ctx context.Context, cursor Cursor) error {
	if err := r.settings.SetSetting(ctx, settingSyncCursor, cursor); err != nil {
		return services.Wrap(services.ErrStorage, cursor.Step.Task, "write sync cursor", "", err)
	}
	return nil
}
