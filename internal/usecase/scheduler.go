package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

// ScheduledActivation triggers the same activation on a cron spec.
type ScheduledActivation struct {
	Spec    string
	Request domain.ActivationRequest
}

// Activator is the slice of the pipeline the scheduler needs.
type Activator interface {
	Activate(ctx context.Context, req domain.ActivationRequest) (domain.ActivationAttempt, error)
}

// Scheduler wires the cron driver with the activation use case.
type Scheduler struct {
	driver    ports.Scheduler
	activator Activator
	jobs      []ScheduledActivation
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring activations.
func NewScheduler(logger *slog.Logger, driver ports.Scheduler, activator Activator, jobs []ScheduledActivation) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		driver:    driver,
		activator: activator,
		jobs:      jobs,
		logger:    logger.With("component", "scheduled_activations"),
	}
}

// Start registers every job with the driver and starts it. Nothing is started when there are no
// jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.activator == nil || len(s.jobs) == 0 {
		return nil
	}

	for _, job := range s.jobs {
		job := job
		if job.Request.ContentID == "" {
			return fmt.Errorf("scheduled activation %q: entry id is required", job.Spec)
		}
		err := s.driver.Schedule(job.Spec, func() {
			attempt, err := s.activator.Activate(ctx, job.Request)
			var aErr *domain.ActivationError
			switch {
			case err == nil:
				s.logger.Info("scheduled activation published", "entry_id", job.Request.ContentID,
					"activation_id", attempt.ID)
			case errors.As(err, &aErr):
				s.logger.Warn("scheduled activation stopped", "entry_id", job.Request.ContentID,
					"activation_id", attempt.ID, "state", aErr.State, "error", aErr.Message)
			default:
				s.logger.Error("scheduled activation failed", "entry_id", job.Request.ContentID, "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
