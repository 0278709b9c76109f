package ports

import (
	"github.com/perturbench/perturbench/internal/domain"
)

// Perturber produces a noisy variant of a sample under one perturbation
// specification. Implementations must be pure: given the same (sample, spec)
// pair they return byte-identical output, independent of call order or
// concurrent invocations on other samples. Implementations must also be the
// identity transformation at intensity 0.
type Perturber interface {
	// Supports reports whether this perturber handles the given kind.
	// The engine dispatches each spec to the first perturber supporting it.
	Supports(kind domain.PerturbationKind) bool

	// Perturb applies the spec to the sample's text.
	// Specs are normalized (intensity clamped to [0, 1]) before use.
	// An empty input text yields an empty output text; output that
	// degenerates to the empty string is a valid result, not an error.
	Perturb(sample domain.Sample, spec domain.PerturbationSpec) (domain.PerturbedSample, error)
}
