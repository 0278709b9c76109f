package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/perturbench/perturbench/infrastructure/classifier"
	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

// VariantGenerator produces the clean-plus-perturbed variant set for a
// sample. It is implemented by the perturbation engine.
type VariantGenerator interface {
	GenerateVariants(ctx context.Context, sample domain.Sample, specs []domain.PerturbationSpec) ([]domain.PerturbedSample, error)
	Diagnostics() domain.Diagnostics
}

// Evaluator runs a full robustness experiment: it perturbs every sample
// across the configured grid, collects classifier predictions, and folds
// them into per-group metrics.
//
// Each worker owns one sample end-to-end, so a sample's clean prediction
// always exists before its perturbed counterparts are recorded and pairing
// by sample id holds by construction.
type Evaluator struct {
	config     *ExperimentConfig
	loader     ports.DatasetLoader
	generator  VariantGenerator
	classifier ports.Classifier
	store      ports.ResultStore
	collector  ports.MetricsCollector
	tracer     trace.Tracer

	mu      sync.Mutex
	groups  map[domain.GroupKey]*groupBucket
	records []domain.PredictionRecord
	flips   []domain.FlipRecord
	skips   []domain.SkipRecord
}

// groupBucket accumulates the paired prediction records for one metric
// group. The clean slice carries one record per contributing sample,
// duplicated into every group that sample participates in.
type groupBucket struct {
	clean     []domain.PredictionRecord
	perturbed []domain.PredictionRecord
}

// NewEvaluator assembles an evaluator. The store and collector are
// optional; a nil store skips persistence.
func NewEvaluator(
	config *ExperimentConfig,
	loader ports.DatasetLoader,
	generator VariantGenerator,
	clf ports.Classifier,
	store ports.ResultStore,
	collector ports.MetricsCollector,
) *Evaluator {
	return &Evaluator{
		config:     config,
		loader:     loader,
		generator:  generator,
		classifier: clf,
		store:      store,
		collector:  collector,
		tracer:     otel.Tracer("evaluator"),
		groups:     make(map[domain.GroupKey]*groupBucket),
	}
}

// Run executes the experiment and returns the complete run report.
// Classifier failures on individual samples become skip records; dataset,
// configuration, and persistence failures abort the run.
func (e *Evaluator) Run(ctx context.Context) (domain.RunReport, error) {
	runID := uuid.NewString()
	startedAt := time.Now()

	ctx, span := e.tracer.Start(ctx, "Evaluator.Run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	samples, err := e.loader.Load(ctx)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("load dataset: %w", err)
	}
	if len(samples) == 0 {
		return domain.RunReport{}, fmt.Errorf("%w: dataset is empty", domain.ErrInvalidConfiguration)
	}
	span.SetAttributes(attribute.Int("samples.count", len(samples)))

	specs := e.config.Specs()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Run.Workers)
	for _, sample := range samples {
		g.Go(func() error {
			return e.evaluateSample(gctx, sample, specs)
		})
	}
	if err := g.Wait(); err != nil {
		return domain.RunReport{}, err
	}

	report := domain.RunReport{
		RunID:      runID,
		Model:      e.classifier.GetModel(),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Results:    e.finalize(),
		Flips:      e.flips,
		Skips:      e.skips,
	}
	report.Diagnostics = e.generator.Diagnostics()
	report.Diagnostics.SamplesSkipped = len(e.skips)

	if e.store != nil {
		if err := e.store.SavePredictions(ctx, runID, e.records); err != nil {
			return domain.RunReport{}, fmt.Errorf("save predictions: %w", err)
		}
		if err := e.store.SaveReport(ctx, report); err != nil {
			return domain.RunReport{}, fmt.Errorf("save report: %w", err)
		}
	}

	return report, nil
}

// evaluateSample generates the variant set for one sample, classifies it in
// a single batch, and folds the predictions into the group buckets.
func (e *Evaluator) evaluateSample(ctx context.Context, sample domain.Sample, specs []domain.PerturbationSpec) error {
	variants, err := e.generator.GenerateVariants(ctx, sample, specs)
	if err != nil {
		// Unsupported kinds and other generation failures are
		// configuration faults that abort the run.
		return err
	}

	batch := make([]string, len(variants))
	for i, v := range variants {
		batch[i] = v.Text
	}

	preds, err := e.classifier.Predict(ctx, batch)
	if err != nil {
		if classifier.IsSkippable(err) {
			e.recordSkip(sample.ID, skipReason(err))
			return nil
		}
		return fmt.Errorf("sample %s: %w", sample.ID, err)
	}
	if len(preds) != len(variants) {
		return fmt.Errorf("sample %s: %w", sample.ID, classifier.ErrBatchSizeMismatch)
	}

	e.fold(sample, variants, preds)
	return nil
}

// fold records the predictions for one sample under the evaluator lock.
// The clean variant is always first in the slice; its record is duplicated
// into every group the sample contributes to so each group can pair
// independently.
func (e *Evaluator) fold(sample domain.Sample, variants []domain.PerturbedSample, preds []ports.Prediction) {
	cleanRecord := domain.PredictionRecord{
		SampleID:       sample.ID,
		VariantKind:    domain.VariantClean,
		GoldLabel:      sample.GoldLabel,
		PredictedLabel: preds[0].Label,
		Confidence:     preds[0].Confidence,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = append(e.records, cleanRecord)

	for i := 1; i < len(variants); i++ {
		variant, pred := variants[i], preds[i]
		record := domain.PredictionRecord{
			SampleID:       sample.ID,
			VariantKind:    variant.VariantKind(),
			Intensity:      variant.Spec.Intensity,
			GoldLabel:      sample.GoldLabel,
			PredictedLabel: pred.Label,
			Confidence:     pred.Confidence,
		}
		e.records = append(e.records, record)

		key := domain.GroupKey{
			Language:  sample.Language,
			Task:      sample.Task,
			Kind:      variant.Spec.Kind,
			Intensity: variant.Spec.Intensity,
		}
		bucket := e.groups[key]
		if bucket == nil {
			bucket = &groupBucket{}
			e.groups[key] = bucket
		}
		bucket.clean = append(bucket.clean, cleanRecord)
		bucket.perturbed = append(bucket.perturbed, record)

		if pred.Label != cleanRecord.PredictedLabel {
			e.recordFlipLocked(sample, variant, cleanRecord.PredictedLabel, pred.Label)
		}
	}
}

// recordFlipLocked appends a flip record, honoring the configured cap.
// Callers must hold e.mu.
func (e *Evaluator) recordFlipLocked(sample domain.Sample, variant domain.PerturbedSample, predClean, predPerturbed string) {
	if limit := e.config.Run.MaxFlipRecords; limit > 0 && len(e.flips) >= limit {
		return
	}
	e.flips = append(e.flips, domain.FlipRecord{
		SampleID:          sample.ID,
		TextClean:         sample.Text,
		TextPerturbed:     variant.Text,
		PredClean:         predClean,
		PredPerturbed:     predPerturbed,
		GoldLabel:         sample.GoldLabel,
		EditDistance:      levenshtein.ComputeDistance(sample.Text, variant.Text),
		PivotWordsChanged: variant.PivotWordsChanged,
	})
}

func (e *Evaluator) recordSkip(sampleID, reason string) {
	e.mu.Lock()
	e.skips = append(e.skips, domain.SkipRecord{
		SampleID:    sampleID,
		VariantKind: "all",
		Reason:      reason,
	})
	e.mu.Unlock()

	if e.collector != nil {
		e.collector.RecordCounter("evaluation_samples_skipped_total", 1,
			map[string]string{"reason": reason})
	}
}

// finalize computes the EvaluationResult for every group, sorted for
// stable output. Pairing holds by construction; a bucket that still fails
// pairing loses its group but never the run.
func (e *Evaluator) finalize() []domain.EvaluationResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	labels := e.classifier.Labels()
	results := make([]domain.EvaluationResult, 0, len(e.groups))

	for key, bucket := range e.groups {
		consistency, err := domain.Consistency(bucket.clean, bucket.perturbed)
		if err != nil {
			e.skips = append(e.skips, domain.SkipRecord{
				SampleID:    "group:" + string(key.Language) + "/" + string(key.Kind),
				VariantKind: string(key.Kind),
				Reason:      "pairing_mismatch",
			})
			continue
		}

		accClean := domain.Accuracy(bucket.clean)
		accPerturbed := domain.Accuracy(bucket.perturbed)

		result := domain.EvaluationResult{
			Language:         key.Language,
			Task:             key.Task,
			PerturbationKind: key.Kind,
			Intensity:        key.Intensity,
			Accuracy:         accPerturbed,
			AccuracyClean:    accClean,
			MacroF1:          domain.MacroF1(bucket.perturbed, labels),
			Consistency:      consistency,
			FlipRate:         domain.FlipRate(consistency),
			NSamples:         len(bucket.perturbed),
		}
		if drop, ok := domain.RelativeDrop(accClean, accPerturbed); ok {
			result.RelativeDrop = &drop
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		if a.Task != b.Task {
			return a.Task < b.Task
		}
		if a.PerturbationKind != b.PerturbationKind {
			return a.PerturbationKind < b.PerturbationKind
		}
		return a.Intensity < b.Intensity
	})
	return results
}

// HighConfidenceFailures returns the perturbed predictions from the last
// run that were wrong at or above the confidence threshold.
func (e *Evaluator) HighConfidenceFailures(threshold float64) []domain.PredictionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.HighConfidenceFailures(e.records, threshold)
}

// skipReason maps a skippable classifier error onto a stable reason string
// for skip records and metrics.
func skipReason(err error) string {
	switch {
	case errors.Is(err, classifier.ErrInputTooLong):
		return "input_too_long"
	case errors.Is(err, classifier.ErrUnrecognizedLabel):
		return "unrecognized_label"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "classifier_rejected"
	}
}
