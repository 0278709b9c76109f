package classifier

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/perturbench/perturbench/internal/ports"
)

// slowCore blocks until its context is canceled.
type slowCore struct{ mockCore }

func (s *slowCore) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeoutMiddleware(t *testing.T) {
	core := &slowCore{}
	wrapped := TimeoutMiddleware(20 * time.Millisecond)(core)

	start := time.Now()
	_, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestTimeoutMiddlewarePassthrough(t *testing.T) {
	core := &mockCore{model: "m", label: "positive"}
	wrapped := TimeoutMiddleware(time.Second)(core)

	preds, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Equal(t, "positive", preds[0].Label)
	assert.Equal(t, "m", wrapped.GetModel())
}

// flakyCore fails a fixed number of times before succeeding.
type flakyCore struct {
	mockCore
	failures int
	failErr  error
}

func (f *flakyCore) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	f.calls.Add(1)
	if f.failures > 0 {
		f.failures--
		return nil, f.failErr
	}
	return f.mockCore.ClassifyBatch(ctx, batch)
}

func TestRetryMiddlewareRecoversFromTransientErrors(t *testing.T) {
	core := &flakyCore{
		mockCore: mockCore{label: "positive"},
		failures: 2,
		failErr:  NewProviderError("test", ErrorTypeServerError, 503, "unavailable", nil),
	}
	wrapped := RetryMiddleware(3, time.Millisecond, 10*time.Millisecond)(core)

	preds, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Equal(t, "positive", preds[0].Label)
	// 2 failures plus the successful mockCore call counted once more.
	assert.GreaterOrEqual(t, core.calls.Load(), int64(3))
}

func TestRetryMiddlewareExhaustsAttempts(t *testing.T) {
	core := &mockCore{err: NewProviderError("test", ErrorTypeRateLimit, 429, "rate limited", nil)}
	wrapped := RetryMiddleware(2, time.Millisecond, 5*time.Millisecond)(core)

	_, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int64(3), core.calls.Load())
}

func TestRetryMiddlewareDoesNotRetryBadRequests(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "bad request provider error",
			err:  NewProviderError("test", ErrorTypeBadRequest, 400, "too long", nil),
		},
		{
			name: "input too long sentinel",
			err:  fmt.Errorf("wrapping: %w", ErrInputTooLong),
		},
		{
			name: "unrecognized label",
			err:  fmt.Errorf("wrapping: %w", ErrUnrecognizedLabel),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core := &mockCore{err: tt.err}
			wrapped := RetryMiddleware(3, time.Millisecond, 5*time.Millisecond)(core)

			_, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
			require.Error(t, err)
			assert.Equal(t, int64(1), core.calls.Load())
		})
	}
}

func TestRetryMiddlewareStopsOnContextCancellation(t *testing.T) {
	core := &mockCore{err: NewProviderError("test", ErrorTypeServerError, 500, "boom", nil)}
	wrapped := RetryMiddleware(10, 50*time.Millisecond, time.Second)(core)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wrapped.ClassifyBatch(ctx, []string{"text"})
	require.Error(t, err)
	assert.LessOrEqual(t, core.calls.Load(), int64(1))
}

func TestRateLimitMiddlewarePacesRequests(t *testing.T) {
	core := &mockCore{label: "positive"}
	// 2 permits available immediately, then 10/s refill.
	wrapped := RateLimitMiddleware(rate.Limit(10), 2)(core)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := wrapped.ClassifyBatch(ctx, []string{"text"})
		require.NoError(t, err)
	}
	elapsed := time.Since(start)

	// The third single-text batch must wait for a token refill.
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Equal(t, int64(3), core.calls.Load())
}

func TestRateLimitMiddlewareRespectsContext(t *testing.T) {
	core := &mockCore{label: "positive"}
	wrapped := RateLimitMiddleware(rate.Limit(0.001), 1)(core)

	ctx := context.Background()
	_, err := wrapped.ClassifyBatch(ctx, []string{"text"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = wrapped.ClassifyBatch(ctx, []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestMetricsMiddlewareRecordsOutcomes(t *testing.T) {
	collector := newMockMetricsCollector()

	t.Run("success", func(t *testing.T) {
		core := &mockCore{model: "gpt-4o-mini", label: "positive"}
		wrapped := MetricsMiddleware(collector)(core)

		_, err := wrapped.ClassifyBatch(context.Background(), []string{"a", "b"})
		require.NoError(t, err)

		assert.Equal(t, float64(1), collector.counters["classifier_requests_total:openai"])
		assert.Equal(t, float64(2), collector.counters["classifier_texts_total:openai"])
		assert.Contains(t, collector.histograms, "classifier_latency_seconds:openai")
	})

	t.Run("error", func(t *testing.T) {
		core := &mockCore{model: "claude-3-5-haiku-20241022", err: errors.New("boom")}
		wrapped := MetricsMiddleware(collector)(core)

		_, err := wrapped.ClassifyBatch(context.Background(), []string{"a"})
		require.Error(t, err)
		assert.Equal(t, float64(1), collector.counters["classifier_requests_total:anthropic"])
	})
}

func TestMetricsMiddlewareNilCollector(t *testing.T) {
	core := &mockCore{model: "gemini-2.0-flash-exp", label: "positive"}
	wrapped := MetricsMiddleware(nil)(core)

	preds, err := wrapped.ClassifyBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Len(t, preds, 1)
}

// mockMetricsCollector records metrics keyed by name and provider label.
type mockMetricsCollector struct {
	histograms map[string]float64
	counters   map[string]float64
	gauges     map[string]float64
}

func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		histograms: make(map[string]float64),
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
	}
}

func (m *mockMetricsCollector) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	m.histograms[operation+":"+labels["provider"]] = duration.Seconds()
}

func (m *mockMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	m.counters[metric+":"+labels["provider"]] += value
}

func (m *mockMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	m.gauges[metric+":"+labels["provider"]] = value
}

func (m *mockMetricsCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.histograms[metric+":"+labels["provider"]] = value
}
