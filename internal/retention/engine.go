package retention

import (
	"context"
	"time"

	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/imagestore"
	"github.com/campusfound/campusfound/internal/notifier"
	"github.com/sirupsen/logrus"
)

// An Engine runs the retention lifecycle stages. It holds no state besides its
// collaborators; every scan re-reads the persisted records.
type Engine struct {
	db       database.Client
	notifier notifier.Dispatcher
	images   imagestore.Store
	cfg      Config
	strategy UserSelectionStrategy
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewEngine returns an Engine for the given collaborators and settings.
func NewEngine(db database.Client, dispatcher notifier.Dispatcher, images imagestore.Store, cfg Config, logger logrus.FieldLogger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strategy, err := strategyFor(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		db:       db,
		notifier: dispatcher,
		images:   images,
		cfg:      cfg,
		strategy: strategy,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Config returns the engine's settings.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetClock overrides the engine's time source.
func (e *Engine) SetClock(clock func() time.Time) {
	e.now = clock
}

// externalCallContext bounds a call to an external collaborator so a hung
// transport cannot stall a scheduled job.
func (e *Engine) externalCallContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.ExternalCallTimeout)
}

// daysRemaining returns the number of grace days left for an entity scheduled
// at the given date.
func (e *Engine) daysRemaining(scheduledAt, now time.Time) int {
	elapsed := int(now.Sub(scheduledAt).Hours() / 24)
	return e.cfg.GracePeriodDays - elapsed
}
