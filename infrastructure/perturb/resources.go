// Package perturb implements the perturbation engine: controlled generation
// of noisy variants of clean text under three independent perturbation
// families (character noise, code-mixing, synonym paraphrase).
//
// All perturbers are pure functions of their (sample, spec) input: every
// randomized choice is drawn from a stream derived from the spec seed and
// the sample ID, so repeated invocations are byte-identical and samples may
// be perturbed concurrently with no shared mutable state. The only shared
// structure is the read-only LexicalResources table.
package perturb

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/perturbench/perturbench/internal/domain"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

//go:embed resources.yaml
var resourcesYAML []byte

// foldCaser normalizes Latin-script tokens for lexicon lookup.
// Indic-script tokens are unaffected by case folding.
var foldCaser = cases.Fold()

// SynonymEntry is one synonym-set entry in the paraphrase lexicon.
type SynonymEntry struct {
	// Candidates are the in-language substitution candidates.
	Candidates []string `yaml:"candidates" validate:"required,min=1"`

	// Pivotal marks tokens carrying the sentence's discriminative signal,
	// such as negation or polarity words.
	Pivotal bool `yaml:"pivotal"`
}

// languageResources holds the raw per-language tables as they appear in the
// embedded YAML file.
type languageResources struct {
	VowelSigns    []string                `yaml:"vowel_signs"`
	FunctionWords []string                `yaml:"function_words"`
	Lexicon       map[string]string       `yaml:"lexicon"`
	Synonyms      map[string]SynonymEntry `yaml:"synonyms" validate:"dive"`
}

type resourcesFile struct {
	Languages map[domain.Language]languageResources `yaml:"languages" validate:"required,min=1"`
}

// LexicalResources is the immutable lexical data every perturber consults:
// per-language vowel-sign sets, closed-class function word lists, the
// bilingual content lexicon, and synonym tables.
//
// Resources are loaded once and never mutated afterwards, which makes them
// safe for unsynchronized concurrent reads.
type LexicalResources struct {
	vowelSigns    map[domain.Language]map[rune]struct{}
	functionWords map[domain.Language]map[string]struct{}
	lexicon       map[domain.Language]map[string]string
	synonyms      map[domain.Language]map[string]SynonymEntry
}

// LoadResources parses and indexes the embedded lexical tables.
func LoadResources() (*LexicalResources, error) {
	return loadResourcesFrom(resourcesYAML)
}

func loadResourcesFrom(data []byte) (*LexicalResources, error) {
	var file resourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing lexical resources: %w", err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("validating lexical resources: %w", err)
	}

	res := &LexicalResources{
		vowelSigns:    make(map[domain.Language]map[rune]struct{}, len(file.Languages)),
		functionWords: make(map[domain.Language]map[string]struct{}, len(file.Languages)),
		lexicon:       make(map[domain.Language]map[string]string, len(file.Languages)),
		synonyms:      make(map[domain.Language]map[string]SynonymEntry, len(file.Languages)),
	}

	for lang, tables := range file.Languages {
		signs := make(map[rune]struct{}, len(tables.VowelSigns))
		for _, s := range tables.VowelSigns {
			runes := []rune(s)
			if len(runes) != 1 {
				return nil, fmt.Errorf("vowel sign %q for language %s is not a single rune", s, lang)
			}
			signs[runes[0]] = struct{}{}
		}
		res.vowelSigns[lang] = signs

		words := make(map[string]struct{}, len(tables.FunctionWords))
		for _, w := range tables.FunctionWords {
			words[foldCaser.String(w)] = struct{}{}
		}
		res.functionWords[lang] = words

		lex := make(map[string]string, len(tables.Lexicon))
		for k, v := range tables.Lexicon {
			lex[foldCaser.String(k)] = v
		}
		res.lexicon[lang] = lex

		syns := make(map[string]SynonymEntry, len(tables.Synonyms))
		for k, v := range tables.Synonyms {
			syns[foldCaser.String(k)] = v
		}
		res.synonyms[lang] = syns
	}

	return res, nil
}

var (
	defaultResources     *LexicalResources
	defaultResourcesOnce sync.Once
	defaultResourcesErr  error
)

// DefaultResources returns the process-wide resource table, loading it on
// first use. The embedded tables are part of the binary, so a load failure
// indicates a broken build rather than a runtime condition.
func DefaultResources() (*LexicalResources, error) {
	defaultResourcesOnce.Do(func() {
		defaultResources, defaultResourcesErr = LoadResources()
	})
	return defaultResources, defaultResourcesErr
}

// IsVowelSign reports whether r is a dependent vowel sign or diacritic mark
// in the given language's script inventory. Characters outside the
// inventory, including characters of other scripts in code-mixed input,
// are never vowel signs.
func (lr *LexicalResources) IsVowelSign(lang domain.Language, r rune) bool {
	_, ok := lr.vowelSigns[lang][r]
	return ok
}

// IsFunctionWord reports whether the token belongs to the language's closed
// grammatical class. Lookup is case-folded.
func (lr *LexicalResources) IsFunctionWord(lang domain.Language, token string) bool {
	_, ok := lr.functionWords[lang][foldCaser.String(token)]
	return ok
}

// Translate returns the embedded-language equivalent of a content word.
// Entries with multiple glosses separated by "/" yield the first gloss.
// The second return value is false on a lexicon miss.
func (lr *LexicalResources) Translate(lang domain.Language, token string) (string, bool) {
	gloss, ok := lr.lexicon[lang][foldCaser.String(token)]
	if !ok {
		return "", false
	}
	for i, r := range gloss {
		if r == '/' {
			return gloss[:i], true
		}
	}
	return gloss, true
}

// Synonyms returns the synonym entry for a token, if any.
func (lr *LexicalResources) Synonyms(lang domain.Language, token string) (SynonymEntry, bool) {
	entry, ok := lr.synonyms[lang][foldCaser.String(token)]
	return entry, ok
}
