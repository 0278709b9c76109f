// Package ports defines the interfaces that form the contract between the
// domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"
)

// Prediction is one classifier outcome for one input text.
type Prediction struct {
	// Label is the predicted class label.
	Label string

	// Confidence is the classifier's confidence in [0, 1]. Providers that
	// do not report a usable confidence return 1.0.
	Confidence float64
}

// Classifier is the sole capability the evaluator requires from a model:
// batched label prediction over raw text. Implementations handle provider
// details (authentication, prompting, response parsing); the evaluator never
// depends on a concrete model wrapper.
//
// Predict returns one Prediction per input, in input order. A batch-level
// failure (rate limiting, input-length rejection, timeout) is returned as an
// error; the evaluator converts such failures into per-sample skips rather
// than aborting the run.
type Classifier interface {
	// Predict classifies every text in the batch.
	// The returned slice has the same length and order as the input.
	// Implementations should respect context cancellation and deadlines.
	Predict(ctx context.Context, batch []string) ([]Prediction, error)

	// Labels returns the closed label set this classifier predicts from.
	Labels() []string

	// GetModel returns the model identifier, for logging and result
	// provenance.
	GetModel() string
}
