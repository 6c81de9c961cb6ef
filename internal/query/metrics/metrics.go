package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the query pipeline.
type Metrics struct {
	// Collaborator latencies by stage
	StageLatency *prometheus.HistogramVec

	// Processed queries by submission readiness
	QueryOutcome *prometheus.CounterVec

	// Overall pipeline latency
	ProcessLatency prometheus.Histogram
}

// New creates a new Metrics instance with all query pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coreport_query_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}), // stage: "retrieve", "extract", "populate", "validate"

		QueryOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coreport_query_outcomes_total",
			Help: "Total processed queries by template and submission readiness",
		}, []string{"template_type", "submission_ready"}),

		ProcessLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coreport_query_process_duration_seconds",
			Help:    "Duration of full query processing including collaborators",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveStageLatency records the duration of one pipeline stage.
func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementOutcome records a processed query outcome.
func (m *Metrics) IncrementOutcome(templateType string, submissionReady bool) {
	if m != nil {
		ready := "false"
		if submissionReady {
			ready = "true"
		}
		m.QueryOutcome.WithLabelValues(templateType, ready).Inc()
	}
}

// ObserveProcessLatency records the total pipeline duration.
func (m *Metrics) ObserveProcessLatency(d time.Duration) {
	if m != nil {
		m.ProcessLatency.Observe(d.Seconds())
	}
}
