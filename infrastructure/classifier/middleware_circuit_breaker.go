package classifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/perturbench/perturbench/internal/ports"
)

// ErrCircuitOpen indicates that the circuit breaker rejected a request.
// This error is returned when the circuit is open and prevents
// requests from reaching the provider.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerState represents the current state of a circuit breaker.
type CircuitBreakerState int

// Circuit breaker states.
const (
	// StateClosed allows all requests to pass through normally.
	StateClosed CircuitBreakerState = iota

	// StateOpen rejects all requests immediately to prevent cascading failures.
	// The circuit enters this state after too many consecutive failures.
	StateOpen

	// StateHalfOpen allows limited requests to test provider recovery.
	// The circuit transitions to this state after the cooldown period expires.
	StateHalfOpen
)

// String returns a human-readable state name for logs and metrics.
func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker tracks consecutive provider failures and opens when they
// exceed the threshold, then tests recovery through half-open states.
//
// Skippable errors (unrecognized labels, oversized inputs, rejected content)
// are caused by individual samples rather than provider health, so they pass
// through without counting as failures.
type CircuitBreaker struct {
	mu               sync.RWMutex
	state            CircuitBreakerState
	failureCount     int
	maxFailures      int
	cooldownDuration time.Duration
	lastFailure      time.Time
}

// NewCircuitBreaker creates a circuit breaker with the specified configuration.
// The circuit opens after maxFailures consecutive errors and stays open
// for cooldownDuration before testing recovery.
func NewCircuitBreaker(maxFailures int, cooldownDuration time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:            StateClosed,
		maxFailures:      maxFailures,
		cooldownDuration: cooldownDuration,
	}
}

// Call executes a function through the circuit breaker.
// If the circuit is open, this returns ErrCircuitOpen immediately.
// Otherwise it executes the function and updates circuit state based on the
// result.
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) < cb.cooldownDuration {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		fallthrough
	case StateHalfOpen:
		err := fn()
		if cb.countsAsFailure(err) {
			cb.failureCount++
			cb.lastFailure = time.Now()
			cb.state = StateOpen
			return err
		}
		cb.failureCount = 0
		cb.state = StateClosed
		return err
	case StateClosed:
		err := fn()
		if cb.countsAsFailure(err) {
			cb.failureCount++
			cb.lastFailure = time.Now()
			if cb.failureCount >= cb.maxFailures {
				cb.state = StateOpen
			}
			return err
		}
		cb.failureCount = 0
		return err
	}
	return nil
}

func (cb *CircuitBreaker) countsAsFailure(err error) bool {
	return err != nil && !IsSkippable(err)
}

// GetState returns the current circuit breaker state.
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// circuitBreakedClassifier guards the provider behind a circuit breaker.
// When failures exceed the threshold the circuit opens, failing fast so a
// struggling provider can recover instead of absorbing an entire run's
// request volume.
type circuitBreakedClassifier struct {
	next      CoreClassifier
	cb        *CircuitBreaker
	collector ports.MetricsCollector
}

// CircuitBreakerMiddleware creates middleware that implements the circuit
// breaker pattern. The circuit opens after maxFailures consecutive errors and
// stays open for the cooldown duration before attempting recovery.
func CircuitBreakerMiddleware(maxFailures int, cooldown time.Duration) Middleware {
	return CircuitBreakerMiddlewareWithMetrics(maxFailures, cooldown, nil)
}

// CircuitBreakerMiddlewareWithMetrics creates circuit breaker middleware that
// reports state transitions and trips to the collector.
func CircuitBreakerMiddlewareWithMetrics(maxFailures int, cooldown time.Duration, collector ports.MetricsCollector) Middleware {
	cb := NewCircuitBreaker(maxFailures, cooldown)

	return func(next CoreClassifier) CoreClassifier {
		return &circuitBreakedClassifier{
			next:      next,
			cb:        cb,
			collector: collector,
		}
	}
}

// ClassifyBatch executes the request through the circuit breaker.
// If the circuit is open this fails immediately without calling the provider.
func (c *circuitBreakedClassifier) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	var preds []ports.Prediction

	err := c.cb.Call(func() error {
		var callErr error
		preds, callErr = c.next.ClassifyBatch(ctx, batch)
		return callErr
	})

	if c.collector != nil {
		labels := map[string]string{
			"provider": extractProvider(c.next.GetModel()),
			"model":    c.next.GetModel(),
			"state":    c.cb.GetState().String(),
		}
		if errors.Is(err, ErrCircuitOpen) {
			c.collector.RecordCounter("classifier_circuit_rejections_total", 1, labels)
		}
	}

	return preds, err
}

// GetModel returns the model name from the wrapped implementation.
func (c *circuitBreakedClassifier) GetModel() string { return c.next.GetModel() }

// SetModel updates the model name in the wrapped implementation.
func (c *circuitBreakedClassifier) SetModel(model string) { c.next.SetModel(model) }
