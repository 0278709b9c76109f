package perturb

import (
	"fmt"

	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

var _ ports.Perturber = (*CharNoisePerturber)(nil)

// CharNoisePerturber produces character-level noisy variants of text.
// It implements three sub-modes selected by the spec kind: independent
// character deletion, non-overlapping adjacent swaps, and script-aware
// dropping of dependent vowel signs.
//
// The perturber is stateless apart from the shared read-only resource table
// and is safe for concurrent use.
type CharNoisePerturber struct {
	resources *LexicalResources
}

// NewCharNoisePerturber creates a character-noise perturber backed by the
// given lexical resources.
func NewCharNoisePerturber(resources *LexicalResources) *CharNoisePerturber {
	return &CharNoisePerturber{resources: resources}
}

// Supports reports whether kind is one of the three character-level modes.
func (p *CharNoisePerturber) Supports(kind domain.PerturbationKind) bool {
	switch kind {
	case domain.KindCharDelete, domain.KindCharSwap, domain.KindVowelDrop:
		return true
	default:
		return false
	}
}

// Perturb applies the spec's character-level mode to the sample text.
//
// All modes are the identity at intensity 0 regardless of seed, and an
// input whose every character is dropped degenerates to the empty string,
// which is a valid result.
func (p *CharNoisePerturber) Perturb(sample domain.Sample, spec domain.PerturbationSpec) (domain.PerturbedSample, error) {
	spec = spec.Normalize()

	variant := domain.PerturbedSample{SourceSampleID: sample.ID, Spec: spec}
	if sample.Text == "" || spec.Intensity == 0 {
		variant.Text = sample.Text
		return variant, nil
	}

	switch spec.Kind {
	case domain.KindCharDelete:
		variant.Text = p.deleteChars(sample, spec)
	case domain.KindCharSwap:
		variant.Text = p.swapChars(sample, spec)
	case domain.KindVowelDrop:
		variant.Text = p.dropVowelSigns(sample, spec)
	default:
		return domain.PerturbedSample{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, spec.Kind)
	}
	return variant, nil
}

// deleteChars deletes each character independently with probability equal
// to the spec intensity.
func (p *CharNoisePerturber) deleteChars(sample domain.Sample, spec domain.PerturbationSpec) string {
	rng := newStream(spec.Seed, sample.ID)
	runes := []rune(sample.Text)
	kept := make([]rune, 0, len(runes))
	for _, r := range runes {
		if rng.Float64() < spec.Intensity {
			continue
		}
		kept = append(kept, r)
	}
	return string(kept)
}

// swapChars scans adjacent character pairs left to right. With probability
// equal to the intensity it swaps the pair and advances past both
// positions, so swaps never overlap; otherwise it advances one position.
func (p *CharNoisePerturber) swapChars(sample domain.Sample, spec domain.PerturbationSpec) string {
	rng := newStream(spec.Seed, sample.ID)
	runes := []rune(sample.Text)
	for i := 0; i < len(runes)-1; {
		if rng.Float64() < spec.Intensity {
			runes[i], runes[i+1] = runes[i+1], runes[i]
			i += 2
			continue
		}
		i++
	}
	return string(runes)
}

// dropVowelSigns drops dependent vowel signs and diacritic marks of the
// sample's language with probability equal to the intensity. Base
// consonants and independent vowels are never dropped, and characters
// outside the language's script inventory pass through unchanged, which
// keeps code-mixed input intact.
func (p *CharNoisePerturber) dropVowelSigns(sample domain.Sample, spec domain.PerturbationSpec) string {
	rng := newStream(spec.Seed, sample.ID)
	runes := []rune(sample.Text)
	kept := make([]rune, 0, len(runes))
	for _, r := range runes {
		if p.resources.IsVowelSign(sample.Language, r) && rng.Float64() < spec.Intensity {
			continue
		}
		kept = append(kept, r)
	}
	return string(kept)
}
