package perturb

import (
	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

var _ ports.Perturber = (*ParaphrasePerturber)(nil)

// ParaphrasePerturber produces synonym-substituted variants. Each content
// token with a non-empty synonym set is substituted in place with
// probability equal to the spec intensity; the replacement is drawn from
// the token's candidate set by the seeded stream.
type ParaphrasePerturber struct {
	resources *LexicalResources
}

// ParaphraseOutcome reports one paraphrase perturbation together with the
// pivotal tokens it touched. Pivot substitutions are hypothesized to
// dominate prediction changes, so they are surfaced for downstream
// qualitative error analysis rather than discarded.
type ParaphraseOutcome struct {
	// Sample is the perturbed variant.
	Sample domain.PerturbedSample

	// Eligible is the number of tokens that had a synonym entry.
	Eligible int

	// Substituted is the number of tokens actually replaced.
	Substituted int

	// PivotWordsChanged lists the original pivotal tokens that were
	// substituted, in sentence order.
	PivotWordsChanged []string
}

// NewParaphrasePerturber creates a paraphrase perturber backed by the given
// lexical resources.
func NewParaphrasePerturber(resources *LexicalResources) *ParaphrasePerturber {
	return &ParaphrasePerturber{resources: resources}
}

// Supports reports whether kind is the paraphrase kind.
func (p *ParaphrasePerturber) Supports(kind domain.PerturbationKind) bool {
	return kind == domain.KindParaphrase
}

// Perturb applies synonym substitution and discards the outcome details.
func (p *ParaphrasePerturber) Perturb(sample domain.Sample, spec domain.PerturbationSpec) (domain.PerturbedSample, error) {
	outcome, err := p.Paraphrase(sample, spec)
	if err != nil {
		return domain.PerturbedSample{}, err
	}
	return outcome.Sample, nil
}

// Paraphrase applies synonym substitution and reports which pivotal tokens
// changed. Only tokens with a synonym entry consume randomness, so the
// presence of unrelated tokens does not disturb determinism.
func (p *ParaphrasePerturber) Paraphrase(sample domain.Sample, spec domain.PerturbationSpec) (ParaphraseOutcome, error) {
	spec = spec.Normalize()

	outcome := ParaphraseOutcome{
		Sample: domain.PerturbedSample{SourceSampleID: sample.ID, Spec: spec, Text: sample.Text},
	}
	if sample.Text == "" || spec.Intensity == 0 {
		return outcome, nil
	}

	rng := newStream(spec.Seed, sample.ID)
	tokens := tokenize(sample.Text)

	changed := false
	for i, t := range tokens {
		if !isContentToken(t.core) {
			continue
		}
		entry, ok := p.resources.Synonyms(sample.Language, t.core)
		if !ok || len(entry.Candidates) == 0 {
			continue
		}
		outcome.Eligible++

		if rng.Float64() >= spec.Intensity {
			continue
		}
		replacement := entry.Candidates[rng.IntN(len(entry.Candidates))]
		if entry.Pivotal {
			outcome.PivotWordsChanged = append(outcome.PivotWordsChanged, t.core)
		}
		tokens[i].core = replacement
		outcome.Substituted++
		changed = true
	}

	if changed {
		outcome.Sample.Text = joinTokens(tokens)
	}
	outcome.Sample.PivotWordsChanged = outcome.PivotWordsChanged
	return outcome, nil
}
