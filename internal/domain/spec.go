package domain

import "fmt"

// PerturbationKind is the closed set of perturbation families the engine
// can apply. Dispatch over kinds is exhaustive; an unrecognized kind is a
// configuration error, never a silent no-op.
type PerturbationKind string

// The five supported perturbation kinds.
const (
	// KindCharDelete deletes characters independently at the configured rate.
	KindCharDelete PerturbationKind = "char_delete"

	// KindCharSwap swaps adjacent characters without overlapping swaps.
	KindCharSwap PerturbationKind = "char_swap"

	// KindVowelDrop drops dependent vowel signs (matras) and diacritic
	// marks, leaving base consonants and independent vowels intact.
	KindVowelDrop PerturbationKind = "vowel_drop"

	// KindCodeMix replaces content words with English equivalents under a
	// matrix-language-frame model, leaving function words in place.
	KindCodeMix PerturbationKind = "codemix"

	// KindParaphrase substitutes content words with in-language synonyms.
	KindParaphrase PerturbationKind = "paraphrase"
)

// VariantClean is the variant kind recorded for unperturbed predictions.
// It is not a PerturbationKind; the clean variant is always produced by the
// identity transformation.
const VariantClean = "clean"

// Kinds returns all supported perturbation kinds in a stable order.
func Kinds() []PerturbationKind {
	return []PerturbationKind{
		KindCharDelete, KindCharSwap, KindVowelDrop, KindCodeMix, KindParaphrase,
	}
}

// ParsePerturbationKind validates a string against the closed kind set.
func ParsePerturbationKind(s string) (PerturbationKind, error) {
	switch PerturbationKind(s) {
	case KindCharDelete, KindCharSwap, KindVowelDrop, KindCodeMix, KindParaphrase:
		return PerturbationKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}

// PerturbationSpec parameterizes one perturbation of one sample.
// The same (sample, spec) pair always yields byte-identical output:
// Seed fixes every randomized choice, and the per-sample random stream is
// derived from Seed combined with the sample ID so that different samples
// diverge under the same seed.
type PerturbationSpec struct {
	// Kind selects the perturbation family.
	Kind PerturbationKind `json:"kind" yaml:"kind"`

	// Intensity is the substitution or drop probability in [0, 1].
	// Values outside the range are clamped by Normalize; clamping is a
	// documented normalization, not an error. Intensity 0 is the identity.
	Intensity float64 `json:"intensity" yaml:"intensity"`

	// Seed fixes all randomized choices for reproducibility.
	Seed int64 `json:"seed" yaml:"seed"`
}

// Normalize returns a copy of the spec with Intensity clamped to [0, 1].
func (s PerturbationSpec) Normalize() PerturbationSpec {
	if s.Intensity < 0 {
		s.Intensity = 0
	}
	if s.Intensity > 1 {
		s.Intensity = 1
	}
	return s
}

// Validate checks that the spec's kind is one of the supported kinds.
// Intensity is not validated here because out-of-range intensities are
// normalized rather than rejected.
func (s PerturbationSpec) Validate() error {
	_, err := ParsePerturbationKind(string(s.Kind))
	return err
}
