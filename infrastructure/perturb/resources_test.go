package perturb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perturbench/perturbench/internal/domain"
)

func TestLoadResources(t *testing.T) {
	res, err := LoadResources()
	require.NoError(t, err)

	t.Run("vowel signs are script specific", func(t *testing.T) {
		assert.True(t, res.IsVowelSign(domain.LanguageHindi, 'ि'))  // ि
		assert.True(t, res.IsVowelSign(domain.LanguageBengali, 'া')) // া
		assert.False(t, res.IsVowelSign(domain.LanguageHindi, 'फ'), "base consonants are never droppable")
		assert.False(t, res.IsVowelSign(domain.LanguageHindi, 'अ'), "independent vowels are never droppable")
		assert.False(t, res.IsVowelSign(domain.LanguageEnglish, 'a'), "latin script has no dependent vowel signs")
		assert.False(t, res.IsVowelSign(domain.LanguageHindi, 'া'), "bengali matra is outside the hindi inventory")
	})

	t.Run("function word lookup is case folded", func(t *testing.T) {
		assert.True(t, res.IsFunctionWord(domain.LanguageEnglish, "The"))
		assert.True(t, res.IsFunctionWord(domain.LanguageHindi, "नहीं"))
		assert.False(t, res.IsFunctionWord(domain.LanguageHindi, "किताब"))
	})

	t.Run("multi gloss entries yield the first gloss", func(t *testing.T) {
		gloss, ok := res.Translate(domain.LanguageHindi, "जल्दी")
		require.True(t, ok)
		assert.Equal(t, "fast", gloss)
	})

	t.Run("lexicon miss is reported not invented", func(t *testing.T) {
		_, ok := res.Translate(domain.LanguageHindi, "रोबोटिक्स")
		assert.False(t, ok)
	})

	t.Run("pivotal flags survive loading", func(t *testing.T) {
		entry, ok := res.Synonyms(domain.LanguageEnglish, "good")
		require.True(t, ok)
		assert.True(t, entry.Pivotal)
		assert.NotEmpty(t, entry.Candidates)

		entry, ok = res.Synonyms(domain.LanguageEnglish, "text")
		require.True(t, ok)
		assert.False(t, entry.Pivotal)
	})
}

func TestDefaultResourcesIsSingleton(t *testing.T) {
	first, err := DefaultResources()
	require.NoError(t, err)
	second, err := DefaultResources()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []token
	}{
		{
			name: "plain words",
			in:   "घर में किताब",
			want: []token{{core: "घर"}, {core: "में"}, {core: "किताब"}},
		},
		{
			name: "trailing danda",
			in:   "अच्छा है।",
			want: []token{{core: "अच्छा"}, {core: "है", trailing: "।"}},
		},
		{
			name: "quoted english",
			in:   `"good" film!`,
			want: []token{{leading: `"`, core: "good", trailing: `"`}, {core: "film", trailing: "!"}},
		},
		{
			name: "pure punctuation token",
			in:   "ठीक --",
			want: []token{{core: "ठीक"}, {core: "--"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.in))
		})
	}
}

func TestIsContentToken(t *testing.T) {
	assert.True(t, isContentToken("घर"))
	assert.True(t, isContentToken("film"))
	assert.False(t, isContentToken(""))
	assert.False(t, isContentToken("--"))
	assert.False(t, isContentToken("2024"))
}
