package perturb

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

// Engine is the perturbation facade. It dispatches each spec to the
// matching perturber by kind and produces the full variant set for a
// sample, always with the unperturbed clean variant first.
//
// Engine methods are safe for concurrent use: the perturbers are pure and
// the diagnostic counters are atomic.
type Engine struct {
	charNoise  *CharNoisePerturber
	codeMix    *CodeMixPerturber
	paraphrase *ParaphrasePerturber

	collector ports.MetricsCollector
	tracer    trace.Tracer

	requested   atomic.Int64
	substituted atomic.Int64
	misses      atomic.Int64
	pivots      atomic.Int64
}

// NewEngine creates a perturbation engine over the given resources.
// The collector is optional; when non-nil it receives lexicon-miss and
// variant counters.
func NewEngine(resources *LexicalResources, collector ports.MetricsCollector) *Engine {
	return &Engine{
		charNoise:  NewCharNoisePerturber(resources),
		codeMix:    NewCodeMixPerturber(resources),
		paraphrase: NewParaphrasePerturber(resources),
		collector:  collector,
		tracer:     otel.Tracer("perturbation-engine"),
	}
}

// GenerateVariants produces one PerturbedSample per spec, preceded by the
// clean variant. The same (sample, spec) pair always yields the same output
// text, independent of call order or concurrent invocation on other
// samples.
//
// A spec whose kind is outside the closed kind set fails the whole call
// with an error wrapping domain.ErrUnsupportedKind: unsupported kinds are a
// configuration fault, not a skippable condition.
func (e *Engine) GenerateVariants(ctx context.Context, sample domain.Sample, specs []domain.PerturbationSpec) ([]domain.PerturbedSample, error) {
	_, span := e.tracer.Start(ctx, "Engine.GenerateVariants",
		trace.WithAttributes(
			attribute.String("sample.id", sample.ID),
			attribute.String("sample.language", string(sample.Language)),
			attribute.Int("specs.count", len(specs)),
		))
	defer span.End()

	variants := make([]domain.PerturbedSample, 0, len(specs)+1)
	variants = append(variants, domain.PerturbedSample{
		SourceSampleID: sample.ID,
		Text:           sample.Text,
	})

	for _, spec := range specs {
		variant, err := e.perturb(sample, spec)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("sample %s: %w", sample.ID, err)
		}
		variants = append(variants, variant)
	}

	if e.collector != nil {
		e.collector.RecordCounter("perturb_variants_generated_total",
			float64(len(variants)),
			map[string]string{"language": string(sample.Language)})
	}
	return variants, nil
}

// perturb dispatches a single spec. The switch is exhaustive over the
// closed kind set so new kinds cannot be silently unhandled.
func (e *Engine) perturb(sample domain.Sample, spec domain.PerturbationSpec) (domain.PerturbedSample, error) {
	switch spec.Kind {
	case domain.KindCharDelete, domain.KindCharSwap, domain.KindVowelDrop:
		return e.charNoise.Perturb(sample, spec)

	case domain.KindCodeMix:
		outcome, err := e.codeMix.Mix(sample, spec)
		if err != nil {
			return domain.PerturbedSample{}, err
		}
		e.requested.Add(int64(outcome.Requested))
		e.substituted.Add(int64(outcome.Substituted))
		e.misses.Add(int64(outcome.Misses))
		if e.collector != nil && outcome.Misses > 0 {
			e.collector.RecordCounter("perturb_lexicon_misses_total",
				float64(outcome.Misses),
				map[string]string{"language": string(sample.Language)})
		}
		return outcome.Sample, nil

	case domain.KindParaphrase:
		outcome, err := e.paraphrase.Paraphrase(sample, spec)
		if err != nil {
			return domain.PerturbedSample{}, err
		}
		e.pivots.Add(int64(len(outcome.PivotWordsChanged)))
		return outcome.Sample, nil

	default:
		return domain.PerturbedSample{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, spec.Kind)
	}
}

// Diagnostics returns a snapshot of the engine's substitution counters.
// The actual substitution count is reported separately from the requested
// one so that lexicon sparsity is visible rather than silently folded into
// the effective perturbation rate.
func (e *Engine) Diagnostics() domain.Diagnostics {
	return domain.Diagnostics{
		RequestedSubstitutions: int(e.requested.Load()),
		ActualSubstitutions:    int(e.substituted.Load()),
		LexiconMisses:          int(e.misses.Load()),
		PivotWordsChanged:      int(e.pivots.Load()),
	}
}
