// Package scheduler fires the retention jobs on fixed daily schedules. It
// holds no business state; each trigger fans out to one engine entry point.
package scheduler

import (
	"context"
	"sync"

	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/retention"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type (
	// A RetentionEngine exposes the lifecycle stage entry points fired by the
	// scheduler.
	RetentionEngine interface {
		MarkInactiveItems(ctx context.Context) ([]retention.ItemMarked, error)
		SendItemWarnings(ctx context.Context) ([]retention.ItemWarned, error)
		PurgeItems(ctx context.Context) ([]retention.ItemPurged, error)
		MarkInactiveUsers(ctx context.Context) ([]retention.UserMarked, error)
		SendUserWarnings(ctx context.Context) ([]retention.UserWarned, error)
		PurgeUsers(ctx context.Context) ([]retention.UserPurged, error)
	}

	// A Config holds the cron expression of each daily trigger. Warnings run
	// before marking so a newly marked entity is never warned the same cycle.
	Config struct {
		ItemWarnSchedule     string
		ItemMarkSchedule     string
		ItemPurgeSchedule    string
		UserWarnSchedule     string
		UserMarkSchedule     string
		UserPurgeSchedule    string
		SessionSweepSchedule string
	}

	// A Scheduler manages the daily retention triggers.
	Scheduler struct {
		engine  RetentionEngine
		db      database.Client
		cfg     Config
		cron    *cron.Cron
		logger  logrus.FieldLogger
		mu      sync.Mutex
		running bool
	}
)

// DefaultConfig returns the default trigger schedules, one distinct hour per
// job during the nightly low-traffic window.
func DefaultConfig() Config {
	return Config{
		SessionSweepSchedule: "30 0 * * *",
		ItemWarnSchedule:     "0 1 * * *",
		ItemMarkSchedule:     "0 2 * * *",
		ItemPurgeSchedule:    "0 3 * * *",
		UserWarnSchedule:     "0 4 * * *",
		UserMarkSchedule:     "0 5 * * *",
		UserPurgeSchedule:    "0 6 * * *",
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.ItemWarnSchedule == "" {
		c.ItemWarnSchedule = d.ItemWarnSchedule
	}
	if c.ItemMarkSchedule == "" {
		c.ItemMarkSchedule = d.ItemMarkSchedule
	}
	if c.ItemPurgeSchedule == "" {
		c.ItemPurgeSchedule = d.ItemPurgeSchedule
	}
	if c.UserWarnSchedule == "" {
		c.UserWarnSchedule = d.UserWarnSchedule
	}
	if c.UserMarkSchedule == "" {
		c.UserMarkSchedule = d.UserMarkSchedule
	}
	if c.UserPurgeSchedule == "" {
		c.UserPurgeSchedule = d.UserPurgeSchedule
	}
	if c.SessionSweepSchedule == "" {
		c.SessionSweepSchedule = d.SessionSweepSchedule
	}
}

// New returns a Scheduler firing the given engine's stages.
func New(engine RetentionEngine, db database.Client, cfg Config, logger logrus.FieldLogger) *Scheduler {
	cfg.normalize()
	return &Scheduler{
		engine: engine,
		db:     db,
		cfg:    cfg,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the triggers and starts the cron loop. It returns once the
// loop runs; jobs execute in cron goroutines until Stop or ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already started")
	}

	jobs := []struct {
		name     string
		schedule string
		run      func(context.Context)
	}{
		{"session-sweep", s.cfg.SessionSweepSchedule, s.runSessionSweep},
		{"item-warn", s.cfg.ItemWarnSchedule, s.runItemWarn},
		{"item-mark", s.cfg.ItemMarkSchedule, s.runItemMark},
		{"item-purge", s.cfg.ItemPurgeSchedule, s.runItemPurge},
		{"user-warn", s.cfg.UserWarnSchedule, s.runUserWarn},
		{"user-mark", s.cfg.UserMarkSchedule, s.runUserMark},
		{"user-purge", s.cfg.UserPurgeSchedule, s.runUserPurge},
	}

	for _, job := range jobs {
		run := job.run
		if _, err := s.cron.AddFunc(job.schedule, func() { run(ctx) }); err != nil {
			return errors.Wrapf(err, "invalid schedule %q for job %s", job.schedule, job.name)
		}
		s.logger.WithFields(map[string]interface{}{
			"job":      job.name,
			"schedule": job.schedule,
		}).Info("retention job scheduled")
	}

	s.cron.Start()
	s.running = true

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron loop and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}

// IsRunning returns true while the cron loop runs.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// A batch-level failure is logged and swallowed at this boundary: the next
// scheduled run retries, the process never crashes.

func (s *Scheduler) runItemMark(ctx context.Context) {
	results, err := s.engine.MarkInactiveItems(ctx)
	if err != nil {
		s.logger.WithError(err).Error("item mark job failed")
		return
	}
	s.logger.WithField("marked", len(results)).Info("item mark job completed")
}

func (s *Scheduler) runItemWarn(ctx context.Context) {
	results, err := s.engine.SendItemWarnings(ctx)
	if err != nil {
		s.logger.WithError(err).Error("item warn job failed")
		return
	}

	sent := 0
	for _, r := range results {
		if r.EmailSent {
			sent++
		}
	}
	s.logger.WithFields(map[string]interface{}{
		"warned": sent,
		"failed": len(results) - sent,
	}).Info("item warn job completed")
}

func (s *Scheduler) runItemPurge(ctx context.Context) {
	results, err := s.engine.PurgeItems(ctx)
	if err != nil {
		s.logger.WithError(err).Error("item purge job failed")
		return
	}

	purged := 0
	for _, r := range results {
		if r.Success {
			purged++
		}
	}
	s.logger.WithFields(map[string]interface{}{
		"purged": purged,
		"failed": len(results) - purged,
	}).Info("item purge job completed")
}

func (s *Scheduler) runUserMark(ctx context.Context) {
	results, err := s.engine.MarkInactiveUsers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user mark job failed")
		return
	}
	s.logger.WithField("marked", len(results)).Info("user mark job completed")
}

func (s *Scheduler) runUserWarn(ctx context.Context) {
	results, err := s.engine.SendUserWarnings(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user warn job failed")
		return
	}

	sent := 0
	for _, r := range results {
		if r.EmailSent {
			sent++
		}
	}
	s.logger.WithFields(map[string]interface{}{
		"warned": sent,
		"failed": len(results) - sent,
	}).Info("user warn job completed")
}

func (s *Scheduler) runUserPurge(ctx context.Context) {
	results, err := s.engine.PurgeUsers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user purge job failed")
		return
	}

	purged := 0
	for _, r := range results {
		if r.Success {
			purged++
		}
	}
	s.logger.WithFields(map[string]interface{}{
		"purged": purged,
		"failed": len(results) - purged,
	}).Info("user purge job completed")
}

func (s *Scheduler) runSessionSweep(ctx context.Context) {
	n, err := s.db.DeleteExpiredSessions()
	if err != nil {
		s.logger.WithError(err).Error("session sweep job failed")
		return
	}
	s.logger.WithField("deleted", n).Info("session sweep job completed")
}
