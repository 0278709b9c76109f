// Package domain contains the core types and pure functions of the
// robustness benchmark: samples, perturbation specifications, prediction
// records, and the metric calculations performed over them.
// Everything in this package is free of I/O and safe for concurrent use.
package domain

import (
	"fmt"
	"strings"
)

// Language identifies the language of a sample's text.
// The benchmark covers English plus three Indic languages whose scripts
// are abugidas (Devanagari for Hindi and Marathi, Bengali script for Bengali).
type Language string

// Supported languages.
const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageMarathi Language = "mr"
	LanguageBengali Language = "bn"
)

// ParseLanguage normalizes a language identifier to a Language.
// It accepts both ISO codes ("hi") and full names ("hindi", "bangla"),
// matching the loose identifiers found in upstream dataset metadata.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return LanguageEnglish, nil
	case "hi", "hindi":
		return LanguageHindi, nil
	case "mr", "marathi":
		return LanguageMarathi, nil
	case "bn", "bengali", "bangla":
		return LanguageBengali, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
}

// Task identifies the prediction task a sample belongs to.
type Task string

// Supported tasks.
const (
	// TaskClassification is single-text classification
	// (sentiment, topic, and similar label sets).
	TaskClassification Task = "classification"

	// TaskNLI is natural language inference over a premise/hypothesis pair
	// that has been joined into a single input text by the loader.
	TaskNLI Task = "nli"
)

// ParseTask normalizes a task identifier to a Task.
func ParseTask(s string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classification", "text-classification":
		return TaskClassification, nil
	case "nli", "inference":
		return TaskNLI, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
	}
}

// Sample is one clean input drawn from a dataset.
// Samples are created by a loader and never mutated afterwards;
// every perturbed variant references its source sample by ID.
type Sample struct {
	// ID uniquely identifies the sample within one evaluation run.
	ID string `json:"id"`

	// Text is the clean input text in the sample's native script.
	Text string `json:"text"`

	// GoldLabel is the ground-truth label for the sample's task.
	GoldLabel string `json:"gold_label"`

	// Language is the language of Text.
	Language Language `json:"language"`

	// Task is the prediction task this sample belongs to.
	Task Task `json:"task"`
}

// PerturbedSample is one noisy variant derived from a Sample.
// It is read-only after creation.
type PerturbedSample struct {
	// SourceSampleID references the Sample this variant was derived from.
	SourceSampleID string `json:"source_sample_id"`

	// Spec is the perturbation specification that produced Text.
	Spec PerturbationSpec `json:"spec"`

	// Text is the perturbed text. It may legitimately be empty when every
	// character of a short input was dropped.
	Text string `json:"text"`

	// PivotWordsChanged lists the pivotal tokens (negation markers and
	// similar) that a paraphrase substitution replaced, in sentence order.
	// Empty for every other perturbation kind.
	PivotWordsChanged []string `json:"pivot_words_changed,omitempty"`
}

// VariantKind returns the record kind for this variant:
// the spec's perturbation kind, or VariantClean for the identity spec.
func (p PerturbedSample) VariantKind() string {
	if p.Spec.Kind == "" {
		return VariantClean
	}
	return string(p.Spec.Kind)
}
