package testutils

import (
	"fmt"
	"math/rand/v2"

	"github.com/perturbench/perturbench/internal/domain"
)

// sentence fragments per language, paired positive/negative so the gold
// label follows from the generated text.
var phrasePool = map[domain.Language]map[string][]string{
	domain.LanguageEnglish: {
		"positive": {
			"the movie was good and the acting felt honest",
			"a happy story told with real warmth",
			"fast paced and very enjoyable from start to finish",
		},
		"negative": {
			"the movie was bad and far too long",
			"a sad waste of a strong cast",
			"not good, not clever, not worth the ticket",
		},
	},
	domain.LanguageHindi: {
		"positive": {
			"फिल्म बहुत अच्छी है और कहानी मजेदार है",
			"अभिनय अच्छा है मुझे फिल्म पसंद आई",
			"गाने अच्छे हैं और कहानी जल्दी आगे बढ़ती है",
		},
		"negative": {
			"फिल्म अच्छी नहीं है कहानी बेकार है",
			"अभिनय बुरा है और फिल्म बहुत लंबी है",
			"मुझे यह फिल्म बिल्कुल पसंद नहीं आई",
		},
	},
	domain.LanguageMarathi: {
		"positive": {
			"चित्रपट खूप छान आहे आणि कथा मनोरंजक आहे",
			"अभिनय चांगला आहे मला चित्रपट आवडला",
		},
		"negative": {
			"चित्रपट चांगला नाही कथा कंटाळवाणी आहे",
			"अभिनय वाईट आहे आणि चित्रपट खूप लांब आहे",
		},
	},
	domain.LanguageBengali: {
		"positive": {
			"ছবিটা খুব ভালো আর গল্পটা দারুণ",
			"অভিনয় ভালো আমার ছবিটা পছন্দ হয়েছে",
		},
		"negative": {
			"ছবিটা ভালো না গল্পটা একঘেয়ে",
			"অভিনয় খারাপ আর ছবিটা খুব লম্বা",
		},
	},
}

// GenerateSamples produces n deterministic sentiment samples in the given
// language, alternating labels. The same (n, language, seed) triple always
// yields the same samples.
func GenerateSamples(n int, language domain.Language, seed uint64) []domain.Sample {
	pool, ok := phrasePool[language]
	if !ok {
		pool = phrasePool[domain.LanguageEnglish]
	}

	rng := rand.New(rand.NewPCG(seed, uint64(len(pool))))
	samples := make([]domain.Sample, 0, n)
	labels := []string{"positive", "negative"}

	for i := 0; i < n; i++ {
		label := labels[i%2]
		texts := pool[label]
		samples = append(samples, domain.Sample{
			ID:        fmt.Sprintf("%s-%04d", language, i),
			Text:      texts[rng.IntN(len(texts))],
			GoldLabel: label,
			Language:  language,
			Task:      domain.TaskClassification,
		})
	}
	return samples
}
