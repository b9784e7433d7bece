// Package orchestrator runs the capture → classify → normalize → persist
// cycle for a set of radar map providers.
package orchestrator

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/rainalert/radar-monitor/internal/domain"
	"github.com/rainalert/radar-monitor/internal/observability"
)

// SnapshotSession is one scoped capture session (a live browser context).
// It must be closed on every exit path; leaking it across runs is a defect.
type SnapshotSession interface {
	Capture(ctx context.Context, provider domain.Provider) (domain.Snapshot, error)
	Close() error
}

// SnapshotOpener acquires a capture session for one run.
type SnapshotOpener interface {
	Open(ctx context.Context) (SnapshotSession, error)
}

// Classifier turns a captured frame into a per-source analysis.
type Classifier interface {
	Classify(img image.Image, provider string) (domain.SourceAnalysis, error)
}

// ResultStore durably records the latest aggregate result, overwriting the
// previous one.
type ResultStore interface {
	Persist(ctx context.Context, result domain.AggregateResult) error
}

// AlertPublisher pushes a completed result to an external channel. Optional;
// publish failures are logged, never fatal.
type AlertPublisher interface {
	Publish(ctx context.Context, result domain.AggregateResult) error
}

// Orchestrator coordinates one analysis run across providers. Providers
// share no mutable state, so they are processed sequentially; the capture
// session is the scarce resource and serializing on it keeps browser memory
// bounded.
type Orchestrator struct {
	opener     SnapshotOpener
	classifier Classifier
	store      ResultStore
	publisher  AlertPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	ready      atomic.Bool
}

// New creates an Orchestrator. Pass a nil publisher to disable alert
// publishing.
func New(opener SnapshotOpener, classifier Classifier, store ResultStore, publisher AlertPublisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Orchestrator {
	return &Orchestrator{
		opener:     opener,
		classifier: classifier,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		clock:      clock,
	}
}

// CheckReadiness returns nil once at least one run has completed and been
// persisted.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return fmt.Errorf("no analysis run has completed yet")
	}
	return nil
}

// Run captures and classifies a snapshot for every requested provider and
// persists one aggregate result.
//
// An unknown provider id fails the run before any capture work starts.
// Per-provider capture or classification failures become error entries in
// the result; the run continues. The whole run fails only when the capture
// collaborator cannot be initialized, the context is cancelled (partial
// results are discarded, never persisted), or persistence fails — in the
// persistence case the computed result is still returned alongside the
// StoreError.
func (o *Orchestrator) Run(ctx context.Context, providerIDs []string) (domain.AggregateResult, error) {
	providers, err := resolveProviders(providerIDs)
	if err != nil {
		return domain.AggregateResult{}, err
	}

	start := o.clock.Now()
	o.metrics.RunsStarted.Inc()
	o.logger.Info("analysis run starting", "providers", providerIDs)

	session, err := o.opener.Open(ctx)
	if err != nil {
		o.metrics.RunFailures.Inc()
		return domain.AggregateResult{}, fmt.Errorf("open snapshot session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			o.logger.Warn("snapshot session close failed", "error", cerr)
		}
	}()

	sources := make(map[string]domain.SourceResult, len(providers))
	for _, p := range providers {
		if ctx.Err() != nil {
			o.metrics.RunFailures.Inc()
			return domain.AggregateResult{}, ctx.Err()
		}
		sources[p.ID] = o.analyzeProvider(ctx, session, p)
	}

	result := domain.AggregateResult{
		Timestamp: o.clock.Now(),
		Sources:   sources,
	}

	if err := o.store.Persist(ctx, result); err != nil {
		o.metrics.RunFailures.Inc()
		return result, &domain.StoreError{Cause: err}
	}
	o.ready.Store(true)

	o.publish(ctx, result)

	o.metrics.RunDuration.Observe(o.clock.Since(start).Seconds())
	o.metrics.LastRunTimestamp.Set(float64(result.Timestamp.Unix()))
	o.logger.Info("analysis run complete",
		"duration", o.clock.Since(start),
		"highest_alert", result.HighestAlertLevel(),
	)
	return result, nil
}

// analyzeProvider produces the tagged entry for one provider: a normalized
// analysis on success, an error marker otherwise.
func (o *Orchestrator) analyzeProvider(ctx context.Context, session SnapshotSession, p domain.Provider) domain.SourceResult {
	snap, err := session.Capture(ctx, p)
	if err != nil {
		acqErr := &domain.AcquisitionError{Provider: p.ID, Cause: err}
		o.logger.Warn("snapshot acquisition failed", "provider", p.ID, "error", err)
		o.metrics.CaptureErrors.WithLabelValues(p.ID).Inc()
		return domain.SourceResult{Err: acqErr.Error()}
	}

	analysis, err := o.classifier.Classify(snap.Image, p.ID)
	if err != nil {
		o.logger.Warn("classification failed", "provider", p.ID, "screenshot", snap.Path, "error", err)
		o.metrics.ClassifyErrors.WithLabelValues(p.ID).Inc()
		return domain.SourceResult{Screenshot: snap.Path, Err: err.Error()}
	}

	// Normalize reported rates to mm/hour. Applied unconditionally: the
	// factor only affects the rate labels, never the alert decision.
	analysis = analysis.NormalizeRates(p.RateUnitFactor)

	o.metrics.ProviderAlertLevel.WithLabelValues(p.ID).Set(float64(analysis.AlertLevel.Rank()))
	return domain.SourceResult{Screenshot: snap.Path, Analysis: &analysis}
}

func (o *Orchestrator) publish(ctx context.Context, result domain.AggregateResult) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, result); err != nil {
		// The file slot is the source of truth; a failed publish is not.
		o.logger.Warn("alert publish failed", "error", err)
		o.metrics.PublishErrors.Inc()
	}
}

// resolveProviders validates the requested ids against the registry before
// any work starts. Requesting an unknown id is a configuration error, not
// something to silently ignore.
func resolveProviders(ids []string) ([]domain.Provider, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no providers requested")
	}
	providers := make([]domain.Provider, 0, len(ids))
	for _, id := range ids {
		p, ok := domain.ProviderByID(id)
		if !ok {
			return nil, &domain.UnknownProviderError{ID: id}
		}
		providers = append(providers, p)
	}
	return providers, nil
}
