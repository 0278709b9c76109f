// Package telemetry provides the Prometheus-backed metrics collector shared
// by the perturbation engine, the classifier middleware, and the evaluator.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/perturbench/perturbench/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of classifier traffic,
// perturbation throughput, and evaluation progress.
type PrometheusMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	variantCounter  *prometheus.CounterVec
	lexiconMisses   *prometheus.CounterVec
	samplesSkipped  *prometheus.CounterVec
	systemGauges    *prometheus.GaugeVec
	genericCounters *prometheus.CounterVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers all
// required metrics in the global Prometheus registry. Construct it at most
// once per process; promauto panics on duplicate registration.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		requestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifier_requests_total",
				Help: "Total classifier batch requests by provider, model, and outcome.",
			},
			[]string{"provider", "model", "status"},
		),
		requestLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "classifier_latency_seconds",
				Help:    "Latency of classifier batch requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "model", "status"},
		),
		variantCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perturb_variants_generated_total",
				Help: "Perturbed variants generated, by language.",
			},
			[]string{"language"},
		),
		lexiconMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perturb_lexicon_misses_total",
				Help: "Content words selected for code-mixing with no lexicon entry.",
			},
			[]string{"language"},
		),
		samplesSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evaluation_samples_skipped_total",
				Help: "Samples dropped from metric computation, by reason.",
			},
			[]string{"reason"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "perturbench_system_state",
				Help: "Current system state values, such as in-flight workers.",
			},
			[]string{"metric"},
		),
		genericCounters: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "perturbench_operations_total",
				Help: "Total operations performed, by operation and status.",
			},
			[]string{"operation", "status"},
		),
	}
}

// RecordLatency records execution latency in the request latency histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.requestLatency.WithLabelValues(
		labels["provider"], labels["model"], operation,
	).Observe(duration.Seconds())
}

// RecordCounter increments the Prometheus counter matching the metric name.
// Unknown metric names land in the generic operation counter so callers never
// need to pre-register names.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "classifier_requests_total", "classifier_texts_total":
		pm.requestCounter.WithLabelValues(
			labels["provider"], labels["model"], labels["status"],
		).Add(value)
	case "perturb_variants_generated_total":
		pm.variantCounter.WithLabelValues(labels["language"]).Add(value)
	case "perturb_lexicon_misses_total":
		pm.lexiconMisses.WithLabelValues(labels["language"]).Add(value)
	case "evaluation_samples_skipped_total":
		pm.samplesSkipped.WithLabelValues(labels["reason"]).Add(value)
	default:
		status, ok := labels["status"]
		if !ok {
			status = "success"
		}
		pm.genericCounters.WithLabelValues(metric, status).Add(value)
	}
}

// RecordGauge sets the system state gauge for the given metric name.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram records a value in the request latency histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	status, ok := labels["status"]
	if !ok {
		status = "unknown"
	}
	pm.requestLatency.WithLabelValues(
		labels["provider"], labels["model"], status,
	).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements
// MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
