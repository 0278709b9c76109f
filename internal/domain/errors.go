package domain

import (
	"errors"
	"fmt"
)

// Common domain errors returned by parsing and metric calculations.
var (
	// ErrUnsupportedKind indicates a perturbation kind outside the closed
	// set of supported kinds.
	ErrUnsupportedKind = errors.New("unsupported perturbation kind")

	// ErrUnknownLanguage indicates a language identifier that could not be
	// normalized to a supported language.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrUnknownTask indicates a task identifier that could not be
	// normalized to a supported task.
	ErrUnknownTask = errors.New("unknown task")

	// ErrMismatchedPairing indicates that clean and perturbed prediction
	// sets do not cover an identical set of sample IDs, so paired metrics
	// (consistency, flip rate) cannot be computed for that group.
	ErrMismatchedPairing = errors.New("mismatched clean/perturbed pairing")

	// ErrInvalidConfiguration indicates configuration that is invalid at
	// startup, such as an unsupported kind or an out-of-range batch size.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// PairingError describes exactly which sample IDs broke the pairing between
// a clean and a perturbed prediction set. It wraps ErrMismatchedPairing so
// callers can test for the condition with errors.Is while still surfacing
// the offending IDs in diagnostics.
type PairingError struct {
	// MissingPerturbed lists sample IDs present in the clean set only.
	MissingPerturbed []string

	// MissingClean lists sample IDs present in the perturbed set only.
	MissingClean []string
}

// Error implements the error interface.
func (e *PairingError) Error() string {
	return fmt.Sprintf(
		"mismatched clean/perturbed pairing: %d ids missing from perturbed set, %d ids missing from clean set",
		len(e.MissingPerturbed), len(e.MissingClean),
	)
}

// Unwrap makes the error match ErrMismatchedPairing under errors.Is.
func (e *PairingError) Unwrap() error { return ErrMismatchedPairing }
