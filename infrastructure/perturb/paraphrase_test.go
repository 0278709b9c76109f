package perturb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perturbench/perturbench/internal/domain"
)

func englishSample(id, text string) domain.Sample {
	return domain.Sample{
		ID: id, Text: text, GoldLabel: "Positive",
		Language: domain.LanguageEnglish, Task: domain.TaskClassification,
	}
}

func TestParaphraseSubstitutesSynonyms(t *testing.T) {
	p := NewParaphrasePerturber(testResources(t))

	sample := englishSample("p-1", "the movie was good")
	outcome, err := p.Paraphrase(sample, domain.PerturbationSpec{
		Kind: domain.KindParaphrase, Intensity: 1, Seed: 6,
	})
	require.NoError(t, err)

	words := strings.Fields(outcome.Sample.Text)
	require.Len(t, words, 4, "substitution is in place")
	assert.Equal(t, []string{"the", "movie", "was"}, words[:3], "tokens without synonyms are untouched")

	entry, ok := testResources(t).Synonyms(domain.LanguageEnglish, "good")
	require.True(t, ok)
	assert.Contains(t, entry.Candidates, words[3])
	assert.Equal(t, 1, outcome.Eligible)
	assert.Equal(t, 1, outcome.Substituted)
}

func TestParaphraseTracksPivotWords(t *testing.T) {
	p := NewParaphrasePerturber(testResources(t))

	// "good" is flagged pivotal; "text" is not.
	sample := englishSample("p-2", "good text")
	outcome, err := p.Paraphrase(sample, domain.PerturbationSpec{
		Kind: domain.KindParaphrase, Intensity: 1, Seed: 13,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Substituted)
	assert.Equal(t, []string{"good"}, outcome.PivotWordsChanged,
		"only pivotal originals are surfaced for error analysis")
	assert.Equal(t, outcome.PivotWordsChanged, outcome.Sample.PivotWordsChanged,
		"the variant carries the pivot list for downstream records")
}

func TestParaphraseHindi(t *testing.T) {
	p := NewParaphrasePerturber(testResources(t))

	sample := hindiSample("p-3", "यह दिन अच्छा है")
	outcome, err := p.Paraphrase(sample, domain.PerturbationSpec{
		Kind: domain.KindParaphrase, Intensity: 1, Seed: 21,
	})
	require.NoError(t, err)

	entry, ok := testResources(t).Synonyms(domain.LanguageHindi, "अच्छा")
	require.True(t, ok)

	words := strings.Fields(outcome.Sample.Text)
	require.Len(t, words, 4)
	assert.Contains(t, entry.Candidates, words[2])
	assert.Equal(t, []string{"अच्छा"}, outcome.PivotWordsChanged)
}

func TestParaphraseIdentityAndDeterminism(t *testing.T) {
	p := NewParaphrasePerturber(testResources(t))
	sample := englishSample("p-4", "a good and happy person")

	t.Run("intensity zero is identity for any seed", func(t *testing.T) {
		for _, seed := range []int64{0, 17, 512} {
			outcome, err := p.Paraphrase(sample, domain.PerturbationSpec{
				Kind: domain.KindParaphrase, Intensity: 0, Seed: seed,
			})
			require.NoError(t, err)
			assert.Equal(t, sample.Text, outcome.Sample.Text)
		}
	})

	t.Run("same seed is byte-identical", func(t *testing.T) {
		spec := domain.PerturbationSpec{Kind: domain.KindParaphrase, Intensity: 0.6, Seed: 5}
		first, err := p.Paraphrase(sample, spec)
		require.NoError(t, err)
		second, err := p.Paraphrase(sample, spec)
		require.NoError(t, err)
		assert.Equal(t, first.Sample.Text, second.Sample.Text)
		assert.Equal(t, first.PivotWordsChanged, second.PivotWordsChanged)
	})
}
