package domain

// HighConfidenceFailures extracts the perturbed predictions that were wrong
// despite a confidence at or above threshold. These are the most interesting
// failures for qualitative review: the model was not merely confused by the
// noise, it was confidently misled.
func HighConfidenceFailures(records []PredictionRecord, threshold float64) []PredictionRecord {
	var failures []PredictionRecord
	for _, r := range records {
		if r.VariantKind == VariantClean {
			continue
		}
		if r.PredictedLabel != r.GoldLabel && r.Confidence >= threshold {
			failures = append(failures, r)
		}
	}
	return failures
}
