package perturb

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perturbench/perturbench/internal/domain"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(testResources(t), nil)
}

func TestEngineCleanVariantFirst(t *testing.T) {
	engine := testEngine(t)
	sample := hindiSample("e-1", "फिल्म बहुत अच्छी है")
	specs := []domain.PerturbationSpec{
		{Kind: domain.KindCharSwap, Intensity: 0.3, Seed: 1},
		{Kind: domain.KindVowelDrop, Intensity: 0.3, Seed: 1},
	}

	variants, err := engine.GenerateVariants(context.Background(), sample, specs)
	require.NoError(t, err)
	require.Len(t, variants, 3)

	assert.Equal(t, domain.VariantClean, variants[0].VariantKind())
	assert.Equal(t, sample.Text, variants[0].Text)
	assert.Equal(t, "char_swap", variants[1].VariantKind())
	assert.Equal(t, "vowel_drop", variants[2].VariantKind())
}

func TestEngineRejectsUnsupportedKind(t *testing.T) {
	engine := testEngine(t)
	_, err := engine.GenerateVariants(context.Background(), hindiSample("e-2", "कुछ"), []domain.PerturbationSpec{
		{Kind: "back_translation", Intensity: 0.5, Seed: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestEngineDeterministicUnderConcurrency(t *testing.T) {
	engine := testEngine(t)
	sample := hindiSample("e-3", "यह एक लंबा वाक्य है जिसमें काफी सारे शब्द हैं")
	specs := []domain.PerturbationSpec{
		{Kind: domain.KindCharDelete, Intensity: 0.25, Seed: 42},
		{Kind: domain.KindCodeMix, Intensity: 0.5, Seed: 42},
		{Kind: domain.KindParaphrase, Intensity: 0.5, Seed: 42},
	}

	baseline, err := engine.GenerateVariants(context.Background(), sample, specs)
	require.NoError(t, err)

	// Concurrent generation for unrelated samples must not disturb the
	// output for this (sample, specs) pair.
	var wg sync.WaitGroup
	results := make([][]domain.PerturbedSample, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			other := hindiSample("noise", "दूसरा वाक्य यहाँ है")
			_, _ = engine.GenerateVariants(context.Background(), other, specs)
			got, err := engine.GenerateVariants(context.Background(), sample, specs)
			require.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Len(t, got, len(baseline))
		for j := range got {
			assert.Equal(t, baseline[j].Text, got[j].Text)
		}
	}
}

func TestEngineDiagnostics(t *testing.T) {
	engine := testEngine(t)

	// Two content words without lexicon entries: both selections miss.
	_, err := engine.GenerateVariants(context.Background(),
		hindiSample("e-4", "रोबोटिक्स और विज्ञान है"),
		[]domain.PerturbationSpec{{Kind: domain.KindCodeMix, Intensity: 1, Seed: 2}})
	require.NoError(t, err)

	diag := engine.Diagnostics()
	assert.Equal(t, 2, diag.RequestedSubstitutions)
	assert.Zero(t, diag.ActualSubstitutions)
	assert.Equal(t, 2, diag.LexiconMisses)
}
