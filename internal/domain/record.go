package domain

// PredictionRecord is one classifier outcome for one (sample, variant) pair.
// Records are append-only; they are created as predictions arrive and folded
// into an EvaluationResult at the end of a run.
type PredictionRecord struct {
	// SampleID references the source sample.
	SampleID string `json:"sample_id"`

	// VariantKind is VariantClean or one of the PerturbationKind values.
	VariantKind string `json:"variant_kind"`

	// Intensity is the perturbation intensity the variant was generated
	// at; zero for the clean variant.
	Intensity float64 `json:"intensity"`

	// GoldLabel is the ground-truth label carried over from the sample so
	// that metric calculations do not need to re-join against the dataset.
	GoldLabel string `json:"gold_label"`

	// PredictedLabel is the label the classifier produced.
	PredictedLabel string `json:"predicted_label"`

	// Confidence is the classifier's confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// GroupKey identifies one metric aggregation group.
// All metrics are computed per (language, task, perturbation kind,
// intensity); each intensity level of a kind forms its own group so a run
// can sweep a noise grid without conflating levels.
type GroupKey struct {
	Language  Language         `json:"language"`
	Task      Task             `json:"task"`
	Kind      PerturbationKind `json:"perturbation_kind"`
	Intensity float64          `json:"intensity"`
}

// EvaluationResult is the aggregate robustness statistics for one group.
//
// Invariants: FlipRate == 1 - Consistency exactly, and RelativeDrop is nil
// (not zero) when the group's clean accuracy is zero.
type EvaluationResult struct {
	Language         Language         `json:"language"`
	Task             Task             `json:"task"`
	PerturbationKind PerturbationKind `json:"perturbation_kind"`

	// Intensity is the perturbation intensity level this group was
	// evaluated at.
	Intensity float64 `json:"intensity"`

	// Accuracy is the fraction of perturbed predictions matching the gold
	// label. AccuracyClean is the same fraction over the paired clean
	// predictions, kept alongside so the drop can be recomputed downstream.
	Accuracy      float64 `json:"accuracy"`
	AccuracyClean float64 `json:"accuracy_clean"`

	// MacroF1 is the unweighted mean of per-class F1 over the perturbed
	// predictions.
	MacroF1 float64 `json:"macro_f1"`

	// RelativeDrop is the percentage accuracy degradation relative to the
	// clean baseline. It is nil when the clean accuracy is zero, in which
	// case the drop is mathematically undefined.
	RelativeDrop *float64 `json:"relative_drop,omitempty"`

	// Consistency is the fraction of samples whose prediction did not
	// change between clean and perturbed input, regardless of correctness.
	Consistency float64 `json:"consistency"`

	// FlipRate is exactly 1 - Consistency.
	FlipRate float64 `json:"flip_rate"`

	// NSamples is the number of samples that contributed to this group
	// after per-sample skips. It may be lower than the dataset size.
	NSamples int `json:"n_samples"`
}

// FlipRecord is one qualitative example of a prediction change, surfaced for
// downstream error analysis.
type FlipRecord struct {
	SampleID      string `json:"sample_id"`
	TextClean     string `json:"text_clean"`
	TextPerturbed string `json:"text_perturbed"`
	PredClean     string `json:"pred_clean"`
	PredPerturbed string `json:"pred_perturbed"`

	// GoldLabel gives the ground truth for the flipped sample.
	GoldLabel string `json:"gold_label"`

	// EditDistance is the Levenshtein distance between the clean and
	// perturbed text, a rough measure of how much noise caused the flip.
	EditDistance int `json:"edit_distance"`

	// PivotWordsChanged lists the pivotal tokens a paraphrase substitution
	// replaced in the perturbed text, when the flipped variant came from
	// the paraphrase kind.
	PivotWordsChanged []string `json:"pivot_words_changed,omitempty"`
}

// SkipRecord documents a sample that was dropped from a run, typically
// because a classifier call failed. Skips never abort the run; they reduce
// the reported NSamples for the affected groups.
type SkipRecord struct {
	SampleID    string `json:"sample_id"`
	VariantKind string `json:"variant_kind"`
	Reason      string `json:"reason"`
}
