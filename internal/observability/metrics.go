package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// snapshot analysis service.
type Metrics struct {
	RunsStarted prometheus.Counter
	RunFailures prometheus.Counter
	RunDuration prometheus.Histogram

	// Per-provider failure and outcome metrics.
	CaptureErrors      *prometheus.CounterVec // label: provider
	ClassifyErrors     *prometheus.CounterVec // label: provider
	ProviderAlertLevel *prometheus.GaugeVec   // label: provider; value 0=none..3=severe

	LastRunTimestamp prometheus.Gauge

	// Alert publishing metrics.
	PublishEnabled prometheus.Gauge
	PublishErrors  prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_monitor",
			Name:      "runs_started_total",
			Help:      "Total analysis runs started.",
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_monitor",
			Name:      "run_failures_total",
			Help:      "Total runs that failed outright (session, cancellation, or store).",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radar_monitor",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete capture-classify-persist run.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
		CaptureErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar_monitor",
			Name:      "capture_errors_total",
			Help:      "Snapshot acquisition failures by provider.",
		}, []string{"provider"}),
		ClassifyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar_monitor",
			Name:      "classify_errors_total",
			Help:      "Image classification failures by provider.",
		}, []string{"provider"}),
		ProviderAlertLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "radar_monitor",
			Name:      "provider_alert_level",
			Help:      "Latest alert level by provider: 0 none, 1 warning, 2 danger, 3 severe.",
		}, []string{"provider"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radar_monitor",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last successfully persisted run.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radar_monitor",
			Name:      "publish_enabled",
			Help:      "1 when Kafka alert publishing is enabled, 0 otherwise.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_monitor",
			Name:      "publish_errors_total",
			Help:      "Total failed alert publishes.",
		}),
	}

	prometheus.MustRegister(
		m.RunsStarted,
		m.RunFailures,
		m.RunDuration,
		m.CaptureErrors,
		m.ClassifyErrors,
		m.ProviderAlertLevel,
		m.LastRunTimestamp,
		m.PublishEnabled,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsStarted:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "radar_monitor", Name: "runs_started_total"}),
		RunFailures:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "radar_monitor", Name: "run_failures_total"}),
		RunDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "radar_monitor", Name: "run_duration_seconds"}),
		CaptureErrors:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "radar_monitor", Name: "capture_errors_total"}, []string{"provider"}),
		ClassifyErrors:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "radar_monitor", Name: "classify_errors_total"}, []string{"provider"}),
		ProviderAlertLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "radar_monitor", Name: "provider_alert_level"}, []string{"provider"}),
		LastRunTimestamp:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "radar_monitor", Name: "last_run_timestamp_seconds"}),
		PublishEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "radar_monitor", Name: "publish_enabled"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "radar_monitor", Name: "publish_errors_total"}),
	}
}
