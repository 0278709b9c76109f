package perturb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perturbench/perturbench/internal/domain"
)

func testResources(t *testing.T) *LexicalResources {
	t.Helper()
	res, err := DefaultResources()
	require.NoError(t, err)
	return res
}

func hindiSample(id, text string) domain.Sample {
	return domain.Sample{
		ID: id, Text: text, GoldLabel: "Positive",
		Language: domain.LanguageHindi, Task: domain.TaskClassification,
	}
}

func TestCharNoiseIntensityZeroIsIdentity(t *testing.T) {
	p := NewCharNoisePerturber(testResources(t))
	sample := hindiSample("s1", "फिल्म बहुत अच्छी है")

	for _, kind := range []domain.PerturbationKind{
		domain.KindCharDelete, domain.KindCharSwap, domain.KindVowelDrop,
	} {
		for _, seed := range []int64{0, 1, 42, 99999} {
			got, err := p.Perturb(sample, domain.PerturbationSpec{Kind: kind, Intensity: 0, Seed: seed})
			require.NoError(t, err)
			assert.Equal(t, sample.Text, got.Text, "kind=%s seed=%d", kind, seed)
		}
	}
}

func TestCharNoiseDeterminism(t *testing.T) {
	p := NewCharNoisePerturber(testResources(t))
	sample := hindiSample("sample-7", "यह एक लंबा वाक्य है जिसमें काफी सारे अक्षर हैं")
	spec := domain.PerturbationSpec{Kind: domain.KindCharDelete, Intensity: 0.3, Seed: 11}

	first, err := p.Perturb(sample, spec)
	require.NoError(t, err)
	second, err := p.Perturb(sample, spec)
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text, "identical (sample, spec) must be byte-identical")

	other := sample
	other.ID = "sample-8"
	third, err := p.Perturb(other, spec)
	require.NoError(t, err)
	assert.NotEqual(t, first.Text, third.Text, "different samples under the same seed must diverge")
}

func TestCharDeleteEdgeCases(t *testing.T) {
	p := NewCharNoisePerturber(testResources(t))

	t.Run("empty text returns empty text", func(t *testing.T) {
		got, err := p.Perturb(hindiSample("s1", ""), domain.PerturbationSpec{
			Kind: domain.KindCharDelete, Intensity: 0.5, Seed: 1,
		})
		require.NoError(t, err)
		assert.Empty(t, got.Text)
	})

	t.Run("full deletion degenerates to empty string", func(t *testing.T) {
		got, err := p.Perturb(hindiSample("s1", "abc"), domain.PerturbationSpec{
			Kind: domain.KindCharDelete, Intensity: 1, Seed: 1,
		})
		require.NoError(t, err)
		assert.Empty(t, got.Text, "an empty result is valid, not an error")
	})

	t.Run("intensity above one is clamped", func(t *testing.T) {
		got, err := p.Perturb(hindiSample("s1", "abc"), domain.PerturbationSpec{
			Kind: domain.KindCharDelete, Intensity: 3.5, Seed: 1,
		})
		require.NoError(t, err)
		assert.Empty(t, got.Text)
		assert.Equal(t, 1.0, got.Spec.Intensity)
	})
}

func TestCharSwapNonOverlapping(t *testing.T) {
	p := NewCharNoisePerturber(testResources(t))

	// At intensity 1 every scan position swaps and skips the swapped pair,
	// so the result is fully determined regardless of seed.
	tests := []struct {
		in   string
		want string
	}{
		{"abcd", "badc"},
		{"abcde", "badce"},
		{"ab", "ba"},
		{"a", "a"},
	}
	for _, tt := range tests {
		got, err := p.Perturb(hindiSample("s1", tt.in), domain.PerturbationSpec{
			Kind: domain.KindCharSwap, Intensity: 1, Seed: 123,
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Text, "input %q", tt.in)
	}
}

func TestVowelDrop(t *testing.T) {
	p := NewCharNoisePerturber(testResources(t))

	t.Run("latin script english is never changed", func(t *testing.T) {
		sample := domain.Sample{
			ID: "en-1", Text: "The film was absolutely wonderful",
			Language: domain.LanguageEnglish, Task: domain.TaskClassification,
		}
		for _, intensity := range []float64{0.1, 0.5, 1.0} {
			got, err := p.Perturb(sample, domain.PerturbationSpec{
				Kind: domain.KindVowelDrop, Intensity: intensity, Seed: 5,
			})
			require.NoError(t, err)
			assert.Equal(t, sample.Text, got.Text, "no matras to drop at intensity %v", intensity)
		}
	})

	t.Run("drops only matras at full intensity", func(t *testing.T) {
		got, err := p.Perturb(hindiSample("hi-1", "फिल्म बहुत अच्छी है"), domain.PerturbationSpec{
			Kind: domain.KindVowelDrop, Intensity: 1, Seed: 5,
		})
		require.NoError(t, err)
		// Base consonants, the virama, and the independent vowel survive.
		assert.Equal(t, "फल्म बहत अच्छ ह", got.Text)
	})

	t.Run("foreign script characters pass through in code-mixed input", func(t *testing.T) {
		got, err := p.Perturb(hindiSample("hi-2", "यह film अच्छी है"), domain.PerturbationSpec{
			Kind: domain.KindVowelDrop, Intensity: 1, Seed: 5,
		})
		require.NoError(t, err)
		assert.Contains(t, got.Text, "film", "latin characters are outside the hindi inventory")
	})
}
