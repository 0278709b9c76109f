package classifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/perturbench/perturbench/internal/ports"
)

const (
	// DefaultRetryBaseDelay is the initial delay before the first retry.
	DefaultRetryBaseDelay = 1 * time.Second
	// DefaultRetryMaxDelay caps the delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second
)

// retryClassifier implements automatic retry logic with exponential backoff.
// Only errors the ProviderError taxonomy marks retryable are retried;
// bad requests and unrecognized labels fail fast so the evaluator can
// record a skip instead of burning attempts.
type retryClassifier struct {
	next       CoreClassifier
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware creates middleware that automatically retries failed
// requests with exponential backoff and jitter.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next CoreClassifier) CoreClassifier {
		return &retryClassifier{
			next:       next,
			maxRetries: maxRetries,
			baseDelay:  baseDelay,
			maxDelay:   maxDelay,
		}
	}
}

// ClassifyBatch executes the request with automatic retry logic.
func (r *retryClassifier) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		preds, err := r.next.ClassifyBatch(ctx, batch)
		if err == nil {
			return preds, nil
		}

		lastErr = err

		if !isRetryable(err) || ctx.Err() != nil {
			return nil, err
		}

		if attempt == r.maxRetries {
			break
		}

		delay := r.calculateDelay(attempt)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			// Continue to next attempt.
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

// isRetryable reports whether a failed batch is worth retrying.
// Unknown errors are treated as transient.
func isRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.IsRetryable()
	}
	return !IsSkippable(err)
}

func (r *retryClassifier) calculateDelay(attempt int) time.Duration {
	// Exponential backoff with jitter.
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	// #nosec G115 - attempt is bounded between 0 and 30
	multiplier := 1 << uint(attempt)
	delay := time.Duration(float64(r.baseDelay) * float64(multiplier))

	// Add jitter (±25%)
	// #nosec G404 - Using weak RNG is acceptable for jitter calculation
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - (delay / 4)

	if delay > r.maxDelay {
		delay = r.maxDelay
	}

	return delay
}

// GetModel returns the model name from the wrapped implementation.
func (r *retryClassifier) GetModel() string { return r.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (r *retryClassifier) SetModel(m string) { r.next.SetModel(m) }
