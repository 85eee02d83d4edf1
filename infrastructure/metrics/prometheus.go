// Package metrics provides the Prometheus implementation of the
// MetricsCollector port.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-arena/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It covers the metrics the LLM middleware emits: request
// latency, request counts by status, and token usage, all partitioned
// by provider and model.
type PrometheusMetrics struct {
	requestLatency   *prometheus.HistogramVec
	requestCounter   *prometheus.CounterVec
	tokenCounter     *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance registered
// against the given registerer. Passing nil registers in the global
// Prometheus registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		requestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_latency_seconds",
				Help:    "Latency of LLM provider requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "model", "status"},
		),
		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total number of LLM provider requests.",
			},
			[]string{"provider", "model", "status"},
		),
		tokenCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_total",
				Help: "Total number of tokens consumed, by direction.",
			},
			[]string{"provider", "model", "token_type"},
		),

		// Catch-all metrics for operations outside the LLM request path.
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arena_operation_duration_seconds",
				Help:    "Execution time of arena operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arena_operations_total",
				Help: "Total number of arena operations.",
			},
			[]string{"operation", "status"},
		),
	}
}

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string, duration time.Duration, labels map[string]string,
) {
	pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by
// incrementing Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "llm_requests_total":
		pm.requestCounter.WithLabelValues(
			labels["provider"], labels["model"], orUnknown(labels["status"]),
		).Add(value)
	case "llm_tokens_total":
		pm.tokenCounter.WithLabelValues(
			labels["provider"], labels["model"], orUnknown(labels["token_type"]),
		).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, orUnknown(labels["status"])).Add(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by
// observing values in Prometheus histograms.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "llm_latency_seconds":
		pm.requestLatency.WithLabelValues(
			labels["provider"], labels["model"], orUnknown(labels["status"]),
		).Observe(value)
	default:
		pm.operationLatency.WithLabelValues(metric).Observe(value)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
