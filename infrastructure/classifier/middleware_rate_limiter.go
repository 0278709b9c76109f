package classifier

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/perturbench/perturbench/internal/ports"
)

// rateLimitedClassifier paces batches through a shared token bucket.
// Evaluation runs fan out across worker goroutines, so the limiter is
// created once per middleware and shared by every wrapped request.
type rateLimitedClassifier struct {
	next    CoreClassifier
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that enforces rate limiting using a
// token bucket algorithm. The limit parameter sets requests per second, while
// burst allows temporary spikes above the sustained rate.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next CoreClassifier) CoreClassifier {
		return &rateLimitedClassifier{
			next:    next,
			limiter: limiter,
		}
	}
}

// ClassifyBatch waits for rate limit permission before forwarding the request.
func (r *rateLimitedClassifier) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	if err := r.limiter.WaitN(ctx, len(batch)); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.ClassifyBatch(ctx, batch)
}

// GetModel returns the model name from the wrapped implementation.
func (r *rateLimitedClassifier) GetModel() string { return r.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (r *rateLimitedClassifier) SetModel(m string) { r.next.SetModel(m) }
