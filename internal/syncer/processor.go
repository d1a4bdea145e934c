package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expertstats/internal/logging"
	"expertstats/internal/services"
)

const (
	// sessionReason labels the session requirement raised before remote calls.
	sessionReason = "API Refresh"
	// aggregatesPage is the transactions page whose response carries the
	// account aggregates.
	aggregatesPage = 2

	defaultCancelAfterDays = 180
)

// Dependencies groups the collaborators a Processor needs.
type Dependencies struct {
	Remote   Remote
	Guard    SessionGuard
	Settings Settings
	Records  Records
	Cache    Cache
}

// Processor runs individual sync steps.
type Processor struct {
	remote          Remote
	guard           SessionGuard
	settings        Settings
	records         Records
	cache           Cache
	logger          *slog.Logger
	now             func() time.Time
	cancelAfterDays int
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides the time source used for last_sync and staleness.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithCancelAfterDays sets the stale threshold used when the
// cancel_after_days setting is absent.
func WithCancelAfterDays(days int) Option {
	return func(p *Processor) {
		if days >= 0 {
			p.cancelAfterDays = days
		}
	}
}

// NewProcessor constructs a Processor. Remote, Guard, Settings, and Records
// are required; a nil Cache disables invalidation.
func NewProcessor(deps Dependencies, opts ...Option) (*Processor, error) {
	switch {
	case deps.Remote == nil:
		return nil, errors.New("syncer: remote api client required")
	case deps.Guard == nil:
		return nil, errors.New("syncer: session guard required")
	case deps.Settings == nil:
		return nil, errors.New("syncer: settings store required")
	case deps.Records == nil:
		return nil, errors.New("syncer: record store required")
	}
	p := &Processor{
		remote:          deps.Remote,
		guard:           deps.Guard,
		settings:        deps.Settings,
		records:         deps.Records,
		cache:           deps.Cache,
		logger:          logging.NewNop(),
		now:             time.Now,
		cancelAfterDays: defaultCancelAfterDays,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "syncer")
	return p, nil
}

// Process runs one step and returns the step to run next: the same step
// advanced to its next page, or nil when the step is finished. The view cache
// is flushed once after every step, including failed ones.
func (p *Processor) Process(ctx context.Context, step Step) (*Step, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	page := max(1, step.Page)
	ctx = services.WithStep(ctx, step.Task)
	logger := logging.WithContext(ctx, p.logger).With(logging.Int(logging.FieldPage, page))

	started := time.Now()
	next, err := p.dispatch(ctx, logger, step.Task, page)
	flushErr := p.flush()

	if err != nil {
		logging.ErrorWithContext(logger, "sync step failed", "step_failed",
			logging.Error(err),
			logging.String("error_kind", services.Kind(err)),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return nil, err
	}
	if flushErr != nil {
		return nil, services.Wrap(services.ErrStorage, step.Task, "flush view cache", "", flushErr)
	}

	if next > 0 && step.Paged {
		advanced := step
		advanced.Page = next
		logger.Info("sync step page stored",
			logging.String(logging.FieldEventType, "step_page"),
			logging.Int("next_page", next),
			logging.Duration("elapsed", time.Since(started)),
		)
		return &advanced, nil
	}
	logger.Info("sync step complete",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil, nil
}

func (p *Processor) dispatch(ctx context.Context, logger *slog.Logger, task string, page int) (int, error) {
	switch task {
	case TaskProfile:
		return 0, p.storeProfile(ctx)
	case TaskTransactions:
		return p.storeTransactions(ctx, logger, page)
	case TaskLost:
		return 0, p.markTasksLost(ctx, logger)
	}
	if filter, ok := taskFilter(task); ok {
		return p.storeTasks(ctx, logger, filter, page)
	}
	logging.WarnWithContext(logger, "unknown sync step ignored", "step_unknown",
		logging.String("task", task),
		logging.String(logging.FieldImpact, "step skipped"),
	)
	return 0, nil
}

func (p *Processor) flush() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Flush()
}

func (p *Processor) storeProfile(ctx context.Context) error {
	if err := p.guard.RequireSession(sessionReason); err != nil {
		return err
	}
	profile, err := p.remote.Self(ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	if err := p.settings.SetSetting(ctx, settingAccountDetails, profile); err != nil {
		return services.Wrap(services.ErrStorage, TaskProfile, "write account details", "", err)
	}
	return nil
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return "run `expertstats login` or set EXPERTSTATS_API_TOKEN"
	case errors.Is(err, services.ErrStorage):
		return "check the database file and rerun with `expertstats sync --resume`"
	case errors.Is(err, services.ErrRemote):
		return "check api.base_url and network access, then `expertstats sync --resume`"
	default:
		return "check logs for details"
	}
}
