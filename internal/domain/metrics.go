package domain

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Accuracy returns the fraction of records whose predicted label equals the
// gold label. An empty record set yields 0, not an error.
func Accuracy(records []PredictionRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	correct := 0
	for _, r := range records {
		if r.PredictedLabel == r.GoldLabel {
			correct++
		}
	}
	return float64(correct) / float64(len(records))
}

// MacroF1 returns the unweighted mean of per-class F1 scores over the given
// records. A class with zero predicted and zero true instances contributes
// an F1 of 0 so the mean stays well-defined on sparse groups.
//
// When classes is nil, the class set is derived from the union of gold and
// predicted labels in the records. An empty record set yields 0.
func MacroF1(records []PredictionRecord, classes []string) float64 {
	if len(records) == 0 {
		return 0
	}
	if classes == nil {
		classes = deriveClasses(records)
	}
	if len(classes) == 0 {
		return 0
	}

	f1s := make([]float64, 0, len(classes))
	for _, class := range classes {
		var tp, fp, fn int
		for _, r := range records {
			switch {
			case r.PredictedLabel == class && r.GoldLabel == class:
				tp++
			case r.PredictedLabel == class:
				fp++
			case r.GoldLabel == class:
				fn++
			}
		}
		f1s = append(f1s, classF1(tp, fp, fn))
	}
	return stat.Mean(f1s, nil)
}

// classF1 computes the F1 score for a single class with zero-division
// handled as 0 rather than NaN.
func classF1(tp, fp, fn int) float64 {
	if tp == 0 {
		return 0
	}
	precision := float64(tp) / float64(tp+fp)
	recall := float64(tp) / float64(tp+fn)
	return 2 * precision * recall / (precision + recall)
}

func deriveClasses(records []PredictionRecord) []string {
	seen := make(map[string]struct{}, 4)
	for _, r := range records {
		seen[r.GoldLabel] = struct{}{}
		seen[r.PredictedLabel] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

// RelativeDrop returns the percentage accuracy degradation from clean to
// perturbed input: (accClean - accPerturbed) / accClean * 100.
//
// The second return value reports whether the drop is defined. It is false
// when accClean is zero; callers must represent that case as an explicit
// null in results rather than coercing it to 0.
func RelativeDrop(accClean, accPerturbed float64) (float64, bool) {
	if accClean == 0 {
		return 0, false
	}
	return (accClean - accPerturbed) / accClean * 100, true
}

// Consistency pairs clean and perturbed prediction records by sample ID and
// returns the fraction of pairs whose predicted labels agree, irrespective
// of correctness.
//
// The two record sets must cover an identical set of sample IDs; otherwise
// a *PairingError wrapping ErrMismatchedPairing is returned. Two empty sets
// pair trivially and yield 0.
func Consistency(clean, perturbed []PredictionRecord) (float64, error) {
	cleanByID := make(map[string]PredictionRecord, len(clean))
	for _, r := range clean {
		cleanByID[r.SampleID] = r
	}
	perturbedByID := make(map[string]PredictionRecord, len(perturbed))
	for _, r := range perturbed {
		perturbedByID[r.SampleID] = r
	}

	var missingPert, missingClean []string
	for id := range cleanByID {
		if _, ok := perturbedByID[id]; !ok {
			missingPert = append(missingPert, id)
		}
	}
	for id := range perturbedByID {
		if _, ok := cleanByID[id]; !ok {
			missingClean = append(missingClean, id)
		}
	}
	if len(missingPert) > 0 || len(missingClean) > 0 {
		sort.Strings(missingPert)
		sort.Strings(missingClean)
		return 0, &PairingError{MissingPerturbed: missingPert, MissingClean: missingClean}
	}

	if len(cleanByID) == 0 {
		return 0, nil
	}

	agree := 0
	for id, c := range cleanByID {
		if perturbedByID[id].PredictedLabel == c.PredictedLabel {
			agree++
		}
	}
	return float64(agree) / float64(len(cleanByID)), nil
}

// FlipRate returns the exact algebraic complement of a consistency score.
// Every EvaluationResult must satisfy FlipRate == 1 - Consistency.
func FlipRate(consistency float64) float64 { return 1 - consistency }
