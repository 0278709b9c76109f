package perturb

import (
	"math"
	"sort"

	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

var _ ports.Perturber = (*CodeMixPerturber)(nil)

// CodeMixPerturber produces lexically mixed variants under a matrix
// language frame: the sample's language supplies the grammatical
// scaffolding (word order and function words stay untouched), and English
// supplies the replaced content words.
//
// Replacement is strictly in place, so the token count of the sentence is
// preserved.
type CodeMixPerturber struct {
	resources *LexicalResources
}

// CodeMixOutcome reports one code-mix perturbation together with its
// diagnostic counters. Lexicon misses are not errors; they silently reduce
// the effective substitution rate, and the gap between Requested and
// Substituted exposes that loss.
type CodeMixOutcome struct {
	// Sample is the perturbed variant.
	Sample domain.PerturbedSample

	// Requested is the number of content words selected for replacement:
	// ceil(intensity * |content words|).
	Requested int

	// Substituted is the number of selections that found a lexicon entry
	// and were replaced.
	Substituted int

	// Misses is Requested - Substituted.
	Misses int
}

// NewCodeMixPerturber creates a code-mix perturber backed by the given
// lexical resources.
func NewCodeMixPerturber(resources *LexicalResources) *CodeMixPerturber {
	return &CodeMixPerturber{resources: resources}
}

// Supports reports whether kind is the code-mix kind.
func (p *CodeMixPerturber) Supports(kind domain.PerturbationKind) bool {
	return kind == domain.KindCodeMix
}

// Perturb applies code-mixing and discards the diagnostic counters.
func (p *CodeMixPerturber) Perturb(sample domain.Sample, spec domain.PerturbationSpec) (domain.PerturbedSample, error) {
	outcome, err := p.Mix(sample, spec)
	if err != nil {
		return domain.PerturbedSample{}, err
	}
	return outcome.Sample, nil
}

// Mix applies code-mixing and reports the requested versus actual
// substitution counts.
//
// Tokens are classified as function words (members of the language's closed
// class list) or content words; among the content words,
// ceil(intensity * count) are selected deterministically by seeded random
// selection without replacement. Selected tokens with no lexicon entry pass
// through unchanged.
func (p *CodeMixPerturber) Mix(sample domain.Sample, spec domain.PerturbationSpec) (CodeMixOutcome, error) {
	spec = spec.Normalize()

	outcome := CodeMixOutcome{
		Sample: domain.PerturbedSample{SourceSampleID: sample.ID, Spec: spec, Text: sample.Text},
	}
	if sample.Text == "" || spec.Intensity == 0 {
		return outcome, nil
	}

	tokens := tokenize(sample.Text)

	var contentIdx []int
	for i, t := range tokens {
		if !isContentToken(t.core) || p.resources.IsFunctionWord(sample.Language, t.core) {
			continue
		}
		contentIdx = append(contentIdx, i)
	}
	if len(contentIdx) == 0 {
		return outcome, nil
	}

	k := int(math.Ceil(spec.Intensity * float64(len(contentIdx))))
	if k > len(contentIdx) {
		k = len(contentIdx)
	}
	outcome.Requested = k

	rng := newStream(spec.Seed, sample.ID)
	selected := rng.Perm(len(contentIdx))[:k]
	sort.Ints(selected)

	changed := false
	for _, s := range selected {
		i := contentIdx[s]
		gloss, ok := p.resources.Translate(sample.Language, tokens[i].core)
		if !ok {
			outcome.Misses++
			continue
		}
		tokens[i].core = gloss
		outcome.Substituted++
		changed = true
	}

	// A run of pure lexicon misses leaves the text byte-identical rather
	// than whitespace-normalized.
	if changed {
		outcome.Sample.Text = joinTokens(tokens)
	}
	return outcome, nil
}
