package classifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/perturbench/perturbench/internal/ports"
)

// metricsClassifier collects per-batch request metrics.
// This provides observability into request patterns, latency, batch sizes,
// and error rates for operational monitoring.
type metricsClassifier struct {
	next      CoreClassifier
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that collects request metrics.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next CoreClassifier) CoreClassifier {
		return &metricsClassifier{
			next:      next,
			collector: collector,
		}
	}
}

// ClassifyBatch executes the request while collecting latency, request, and
// text counters labeled by provider, model, and outcome status.
func (m *metricsClassifier) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	start := time.Now()
	preds, err := m.next.ClassifyBatch(ctx, batch)

	labels := map[string]string{
		"provider": extractProvider(m.next.GetModel()),
		"model":    m.next.GetModel(),
		"status":   "success",
	}

	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			labels["status"] = "timeout"
		case IsSkippable(err):
			labels["status"] = "skipped"
		default:
			labels["status"] = "error"
		}
	}

	if m.collector != nil {
		m.collector.RecordHistogram("classifier_latency_seconds", time.Since(start).Seconds(), labels)
		m.collector.RecordCounter("classifier_requests_total", 1, labels)
		m.collector.RecordCounter("classifier_texts_total", float64(len(batch)), labels)
	}

	return preds, err
}

// extractProvider infers the provider name from common model naming schemes.
func extractProvider(model string) string {
	if strings.Contains(model, "gpt") {
		return "openai"
	} else if strings.Contains(model, "claude") {
		return "anthropic"
	} else if strings.Contains(model, "gemini") {
		return "google"
	}
	return "unknown"
}

// GetModel returns the model name from the wrapped implementation.
func (m *metricsClassifier) GetModel() string { return m.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (m *metricsClassifier) SetModel(model string) { m.next.SetModel(model) }
