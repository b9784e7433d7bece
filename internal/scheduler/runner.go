// Package scheduler drives periodic analysis runs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rainalert/radar-monitor/internal/domain"
)

// RunTrigger is the orchestration entry point the runner drives.
type RunTrigger interface {
	Run(ctx context.Context, providerIDs []string) (domain.AggregateResult, error)
}

// Runner executes an analysis run immediately and then on every interval
// tick until the context is cancelled. Runs execute on the runner's
// goroutine, so a slow run simply delays the next tick's work; ticks that
// fire while a run is in flight coalesce.
type Runner struct {
	trigger   RunTrigger
	providers []string
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
}

// New creates a Runner.
func New(trigger RunTrigger, providers []string, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Runner {
	return &Runner{
		trigger:   trigger,
		providers: providers,
		interval:  interval,
		clock:     clock,
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled. Per-run errors are logged and the loop
// continues; the scheduler never gives up on a transient failure.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("scheduler started", "interval", r.interval, "providers", r.providers)

	r.runOnce(ctx)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := r.trigger.Run(ctx, r.providers); err != nil {
		r.logger.Error("scheduled run failed", "error", err)
	}
}
