package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	core := &flakyCore{
		mockCore: mockCore{label: "positive"},
		failures: 100,
		failErr:  NewProviderError("test", ErrorTypeServerError, 503, "unavailable", nil),
	}
	wrapped := CircuitBreakerMiddleware(2, time.Minute)(core)

	for i := 0; i < 2; i++ {
		_, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}

	// Circuit is now open; the core must not be reached.
	before := core.calls.Load()
	_, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, core.calls.Load())
}

func TestCircuitBreakerIgnoresSkippableErrors(t *testing.T) {
	core := &flakyCore{
		mockCore: mockCore{label: "positive"},
		failures: 10,
		failErr:  ErrUnrecognizedLabel,
	}
	wrapped := CircuitBreakerMiddleware(2, time.Minute)(core)

	for i := 0; i < 5; i++ {
		_, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
		require.ErrorIs(t, err, ErrUnrecognizedLabel)
	}
	// Per-sample rejections never trip the circuit.
	assert.Equal(t, int64(5), core.calls.Load())
}

func TestCircuitBreakerRecoversAfterCooldown(t *testing.T) {
	core := &flakyCore{
		mockCore: mockCore{label: "positive"},
		failures: 2,
		failErr:  NewProviderError("test", ErrorTypeServerError, 503, "unavailable", nil),
	}
	wrapped := CircuitBreakerMiddleware(2, 10*time.Millisecond)(core)

	for i := 0; i < 2; i++ {
		_, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
		require.Error(t, err)
	}

	time.Sleep(20 * time.Millisecond)

	// Half-open probe succeeds and closes the circuit.
	preds, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Equal(t, "positive", preds[0].Label)

	preds, err = wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Equal(t, "positive", preds[0].Label)
}

func TestCircuitBreakerRecordsRejections(t *testing.T) {
	collector := newMockMetricsCollector()
	core := &flakyCore{
		mockCore: mockCore{model: "gpt-4o-mini", label: "positive"},
		failures: 100,
		failErr:  NewProviderError("test", ErrorTypeServerError, 503, "unavailable", nil),
	}
	wrapped := CircuitBreakerMiddlewareWithMetrics(1, time.Minute, collector)(core)

	_, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	_, err = wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.ErrorIs(t, err, ErrCircuitOpen)

	assert.Equal(t, float64(1), collector.counters["classifier_circuit_rejections_total:openai"])
}

func TestCircuitBreakerStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
}
