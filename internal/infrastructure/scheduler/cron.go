package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ContentActivation/internal/ports"
)

// CronScheduler runs jobs on standard five-field cron expressions.
type CronScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler in loc; nil means local time. Panicking jobs are recovered
// and logged.
func NewCronScheduler(logger *slog.Logger, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		logger: logger,
	}
}

// Schedule registers job under spec.
func (c *CronScheduler) Schedule(spec string, job func()) error {
	if job == nil {
		return fmt.Errorf("schedule %q: nil job", spec)
	}
	if _, err := c.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	return nil
}

// Start begins running jobs and stops them when ctx is done.
func (c *CronScheduler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	c.running = true
	c.cron.Start()
	c.logger.Info("scheduler started", "jobs", len(c.cron.Entries()))

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Stop halts scheduling and waits for running jobs, bounded by ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.mu.Unlock()

	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports when the earliest job fires next; zero if nothing is scheduled.
func (c *CronScheduler) Next() time.Time {
	var next time.Time
	for _, e := range c.cron.Entries() {
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

type cronLogger struct{ logger *slog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
