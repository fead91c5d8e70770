package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the preparation
// pipelines. Both CLIs record into the same metric families, distinguished by
// the pipeline label.
type Metrics struct {
	StageRuns       *prometheus.CounterVec // labels: pipeline, stage, outcome={success,failure}
	ToolInvocations *prometheus.CounterVec // labels: tool, outcome={success,failure}
	Fallbacks       *prometheus.CounterVec // labels: pipeline
	BytesDownloaded prometheus.Counter

	RunDuration *prometheus.HistogramVec // labels: pipeline
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StageRuns,
		m.ToolInvocations,
		m.Fallbacks,
		m.BytesDownloaded,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigator_prepare",
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by outcome.",
		}, []string{"pipeline", "stage", "outcome"}),
		ToolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigator_prepare",
			Name:      "tool_invocations_total",
			Help:      "External geospatial tool invocations by outcome.",
		}, []string{"tool", "outcome"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigator_prepare",
			Name:      "fallbacks_total",
			Help:      "Runs that degraded to the placeholder artifact.",
		}, []string{"pipeline"}),
		BytesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navigator_prepare",
			Name:      "bytes_downloaded_total",
			Help:      "Total bytes fetched from the remote origin.",
		}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "navigator_prepare",
			Name:      "run_duration_seconds",
			Help:      "End-to-end duration of one pipeline run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"pipeline"}),
	}
}
