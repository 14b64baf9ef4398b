package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"MarketSentiment/internal/ports"
)

// Scheduler wires the interval driver with the serialized runner. If a tick
// fires while a cycle is still running, that tick is dropped rather than
// queued; the next tick retries.
type Scheduler struct {
	driver ports.Scheduler
	runner *Runner
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring cycles.
func NewScheduler(driver ports.Scheduler, runner *Runner, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, runner: runner, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.runner.Trigger(ctx); err != nil {
			if errors.Is(err, ErrCycleInFlight) && s.logger != nil {
				s.logger.Warn("skipping scheduled cycle, previous still running", "tick", trigger)
			}
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
