package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"MarketSentiment/internal/domain"
)

// ErrCycleInFlight is returned when a trigger arrives while a cycle is
// already running. Callers retry later; cycles are never queued up.
var ErrCycleInFlight = errors.New("pipeline cycle already in flight")

// Result carries a finished cycle's report back to the triggering caller.
type Result struct {
	Report domain.Report
	Err    error
}

// Runner serializes pipeline execution: at most one cycle runs at a time,
// which keeps the store's dedup-then-insert discipline free of overlapping
// writers. Both the scheduler and manual triggers go through here.
type Runner struct {
	pipeline     *Pipeline
	cycleTimeout time.Duration
	slot         chan struct{}
	logger       *slog.Logger
}

// NewRunner builds a runner with a per-cycle timeout (0 disables it).
func NewRunner(pipeline *Pipeline, cycleTimeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		pipeline:     pipeline,
		cycleTimeout: cycleTimeout,
		slot:         make(chan struct{}, 1),
		logger:       logger,
	}
}

// Trigger starts a cycle in the background and returns a channel that
// receives the single Result. If a cycle is already running it returns
// ErrCycleInFlight without starting anything.
func (r *Runner) Trigger(ctx context.Context) (<-chan Result, error) {
	select {
	case r.slot <- struct{}{}:
	default:
		return nil, ErrCycleInFlight
	}

	done := make(chan Result, 1)
	go func() {
		defer func() { <-r.slot }()

		runCtx := ctx
		cancel := func() {}
		if r.cycleTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.cycleTimeout)
		}
		defer cancel()

		report, err := r.pipeline.RunCycle(runCtx)
		if err != nil && r.logger != nil {
			r.logger.Error("pipeline cycle failed", "error", err)
		}
		done <- Result{Report: report, Err: err}
	}()

	return done, nil
}

// RunOnce triggers a cycle and blocks until it finishes.
func (r *Runner) RunOnce(ctx context.Context) (domain.Report, error) {
	done, err := r.Trigger(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	result := <-done
	return result.Report, result.Err
}
