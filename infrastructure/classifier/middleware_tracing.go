package classifier

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/perturbench/perturbench/internal/ports"
)

// tracedClassifier wraps provider requests in trace spans for debugging and
// latency analysis.
type tracedClassifier struct {
	next   CoreClassifier
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that records a span per batch request.
func TracingMiddleware() Middleware {
	return func(next CoreClassifier) CoreClassifier {
		return &tracedClassifier{
			next:   next,
			tracer: otel.Tracer("classifier"),
		}
	}
}

// ClassifyBatch executes the request within a trace span carrying the model
// name and batch size.
func (t *tracedClassifier) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	ctx, span := t.tracer.Start(ctx, "classifier.ClassifyBatch",
		trace.WithAttributes(
			attribute.String("classifier.model", t.next.GetModel()),
			attribute.Int("classifier.batch_size", len(batch)),
		))
	defer span.End()

	preds, err := t.next.ClassifyBatch(ctx, batch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("classifier.predictions", len(preds)))
	return preds, nil
}

// GetModel returns the model name from the wrapped implementation.
func (t *tracedClassifier) GetModel() string { return t.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (t *tracedClassifier) SetModel(model string) { t.next.SetModel(model) }
