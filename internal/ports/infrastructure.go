package ports

import (
	"context"
	"time"

	"github.com/perturbench/perturbench/internal/domain"
)

// DatasetLoader yields the clean samples for one evaluation run.
// The core imposes no constraint on the source format.
type DatasetLoader interface {
	// Load reads all samples from the underlying source.
	// Samples are immutable once returned.
	Load(ctx context.Context) ([]domain.Sample, error)
}

// ResultStore persists the structured output of an evaluation run for
// external reporting and plotting. Implementations could target SQLite,
// flat JSON files, or a remote service.
type ResultStore interface {
	// SaveReport persists the aggregate results, flip records, and skip
	// records of a completed run.
	SaveReport(ctx context.Context, report domain.RunReport) error

	// SavePredictions persists the raw per-variant prediction records of a
	// run, enabling re-aggregation and qualitative error analysis.
	SavePredictions(ctx context.Context, runID string, records []domain.PredictionRecord) error

	// Close releases any resources held by the store.
	Close() error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms such as
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric. This tracks events such
	// as lexicon misses, classifier skips, and variants generated.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as classifier
	// batch latency or per-sample edit distances.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
