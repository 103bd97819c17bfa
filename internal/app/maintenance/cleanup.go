// Package maintenance schedules housekeeping sweeps of expired rows. Expiry is
// always enforced at read time; these jobs only reclaim storage.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"menu_backend/internal/platform/logger"
)

const defaultSchedule = "@every 15m"

// CodeSweeper deletes one-time code records that expired before now.
type CodeSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweeper deletes expired or revoked refresh sessions.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Cleaner runs the sweeps on a cron schedule.
type Cleaner struct {
	pending  CodeSweeper
	resets   CodeSweeper
	sessions SessionSweeper
	cron     *cron.Cron
	schedule string
	now      func() time.Time
	log      *zap.Logger
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithSchedule overrides the cron specification.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil sweeper skips that sweep.
func NewCleaner(pending, resets CodeSweeper, sessions SessionSweeper, opts ...Option) *Cleaner {
	c := &Cleaner{
		pending:  pending,
		resets:   resets,
		sessions: sessions,
		schedule: defaultSchedule,
		now:      time.Now,
		log:      logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cron == nil {
		c.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return c
}

// Start registers the sweep and launches the scheduler.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", c.schedule, err)
	}
	c.cron.Start()
	c.log.Info("cleanup scheduled", zap.String("schedule", c.schedule))
	return nil
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (c *Cleaner) Stop() context.Context {
	return c.cron.Stop()
}

// RunOnce executes every sweep and returns their combined errors.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	now := c.now()
	var errs error

	if c.pending != nil {
		n, err := c.pending.DeleteExpired(ctx, now)
		errs = multierr.Append(errs, c.report("pending verifications", n, err))
	}
	if c.resets != nil {
		n, err := c.resets.DeleteExpired(ctx, now)
		errs = multierr.Append(errs, c.report("password resets", n, err))
	}
	if c.sessions != nil {
		n, err := c.sessions.DeleteExpired(ctx)
		errs = multierr.Append(errs, c.report("sessions", n, err))
	}
	return errs
}

func (c *Cleaner) report(what string, n int64, err error) error {
	if err != nil {
		return fmt.Errorf("cleanup %s: %w", what, err)
	}
	if n > 0 {
		c.log.Info("expired rows removed", zap.String("table", what), zap.Int64("count", n))
	}
	return nil
}
