package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/perturbench/perturbench/internal/ports"
)

// testPrometheusMetrics provides a global instance to avoid duplicate metric
// registration issues across tests in the same package.
var testPrometheusMetrics *PrometheusMetrics

func init() {
	// promauto registers into the global registry, so the package shares a
	// single instance across tests.
	testPrometheusMetrics = NewPrometheusMetrics()
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm := testPrometheusMetrics

	assert.NotNil(t, pm)
	assert.NotNil(t, pm.requestCounter)
	assert.NotNil(t, pm.requestLatency)
	assert.NotNil(t, pm.variantCounter)
	assert.NotNil(t, pm.lexiconMisses)
	assert.NotNil(t, pm.samplesSkipped)
	assert.NotNil(t, pm.systemGauges)
	assert.NotNil(t, pm.genericCounters)

	var _ ports.MetricsCollector = pm
}

func TestPrometheusMetricsRecording(t *testing.T) {
	pm := testPrometheusMetrics

	// Recording must never panic, with or without the expected labels.
	assert.NotPanics(t, func() {
		pm.RecordLatency("success", 120*time.Millisecond, map[string]string{
			"provider": "openai", "model": "gpt-4o-mini",
		})
		pm.RecordCounter("classifier_requests_total", 1, map[string]string{
			"provider": "openai", "model": "gpt-4o-mini", "status": "success",
		})
		pm.RecordCounter("perturb_variants_generated_total", 5, map[string]string{
			"language": "hi",
		})
		pm.RecordCounter("perturb_lexicon_misses_total", 2, map[string]string{
			"language": "mr",
		})
		pm.RecordCounter("evaluation_samples_skipped_total", 1, map[string]string{
			"reason": "input_too_long",
		})
		pm.RecordCounter("unregistered_metric", 1, nil)
		pm.RecordGauge("workers_in_flight", 8, nil)
		pm.RecordHistogram("classifier_latency_seconds", 0.42, map[string]string{
			"provider": "google", "model": "gemini-2.0-flash-exp", "status": "success",
		})
		pm.RecordHistogram("classifier_latency_seconds", 0.1, nil)
	})
}
