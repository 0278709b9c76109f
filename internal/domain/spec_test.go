package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePerturbationKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParsePerturbationKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParsePerturbationKind("typo_injection")
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	_, err = ParsePerturbationKind(VariantClean)
	assert.ErrorIs(t, err, ErrUnsupportedKind, "clean is a variant kind, not a perturbation kind")
}

func TestPerturbationSpecNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "negative clamps to zero", in: -0.3, want: 0},
		{name: "above one clamps to one", in: 1.7, want: 1},
		{name: "in range unchanged", in: 0.42, want: 0.42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := PerturbationSpec{Kind: KindCharDelete, Intensity: tt.in, Seed: 7}
			got := spec.Normalize()
			assert.Equal(t, tt.want, got.Intensity)
			assert.Equal(t, spec.Seed, got.Seed, "normalization must not touch the seed")
		})
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"en", LanguageEnglish},
		{"English", LanguageEnglish},
		{"hi", LanguageHindi},
		{"Hindi", LanguageHindi},
		{"marathi", LanguageMarathi},
		{"bangla", LanguageBengali},
		{" bn ", LanguageBengali},
	}
	for _, tt := range tests {
		got, err := ParseLanguage(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLanguage("ta")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestPerturbedSampleVariantKind(t *testing.T) {
	cleanVariant := PerturbedSample{SourceSampleID: "s1", Text: "unchanged"}
	assert.Equal(t, VariantClean, cleanVariant.VariantKind())

	noisy := PerturbedSample{
		SourceSampleID: "s1",
		Spec:           PerturbationSpec{Kind: KindVowelDrop, Intensity: 0.2, Seed: 1},
		Text:           "chngd",
	}
	assert.Equal(t, "vowel_drop", noisy.VariantKind())
}
