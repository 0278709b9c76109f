package classifier

import (
	"context"
	"time"

	"github.com/perturbench/perturbench/internal/ports"
)

// timeoutClassifier enforces a per-batch deadline on the wrapped classifier.
type timeoutClassifier struct {
	next    CoreClassifier
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that enforces request timeouts.
// The timeout covers the whole batch, not individual texts within it.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next CoreClassifier) CoreClassifier {
		return &timeoutClassifier{
			next:    next,
			timeout: timeout,
		}
	}
}

// ClassifyBatch executes the request with a timeout context.
func (t *timeoutClassifier) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.ClassifyBatch(ctx, batch)
}

// GetModel returns the model name from the wrapped implementation.
func (t *timeoutClassifier) GetModel() string { return t.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (t *timeoutClassifier) SetModel(m string) { t.next.SetModel(m) }
