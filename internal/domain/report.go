package domain

import "time"

// Diagnostics carries the non-fatal counters accumulated over a run.
// They explain gaps between requested and effective perturbation without
// turning lexical sparsity into errors.
type Diagnostics struct {
	// RequestedSubstitutions counts content words selected for replacement
	// across all code-mix perturbations.
	RequestedSubstitutions int `json:"requested_substitutions"`

	// ActualSubstitutions counts the selections that found a lexicon entry
	// and were actually replaced.
	ActualSubstitutions int `json:"actual_substitutions"`

	// LexiconMisses counts selections that had no lexicon entry and passed
	// through unchanged.
	LexiconMisses int `json:"lexicon_misses"`

	// PivotWordsChanged counts paraphrase substitutions that touched a
	// pivotal token (negation or polarity words). Flipping these is
	// hypothesized to dominate prediction changes.
	PivotWordsChanged int `json:"pivot_words_changed"`

	// SamplesSkipped counts samples dropped because of classifier failures.
	SamplesSkipped int `json:"samples_skipped"`
}

// RunReport is the complete structured output of one evaluation run.
type RunReport struct {
	// RunID uniquely identifies the run (a UUID).
	RunID string `json:"run_id"`

	// Model is the classifier model identifier the run was evaluated with.
	Model string `json:"model"`

	// StartedAt and FinishedAt bound the run's wall-clock duration.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Results holds one EvaluationResult per (language, task, kind) group.
	Results []EvaluationResult `json:"results"`

	// Flips holds the qualitative per-flip records for error analysis.
	Flips []FlipRecord `json:"flips,omitempty"`

	// Skips documents every sample dropped from the run, with reasons.
	Skips []SkipRecord `json:"skips,omitempty"`

	// Diagnostics aggregates the run's non-fatal counters.
	Diagnostics Diagnostics `json:"diagnostics"`
}
