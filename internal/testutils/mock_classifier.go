// Package testutils provides deterministic doubles and data generators for
// testing the evaluation pipeline without live classifier providers.
package testutils

import (
	"context"
	"sync"

	"github.com/perturbench/perturbench/internal/ports"
)

// MockClassifier implements ports.Classifier with scripted, deterministic
// responses. Exact texts can be mapped to labels; unscripted texts fall back
// to the configured default, which makes flip behavior easy to stage: script
// the clean texts and let their perturbed variants fall through.
type MockClassifier struct {
	mu sync.Mutex

	model        string
	labels       []string
	responses    map[string]string
	defaultLabel string
	confidence   float64

	// err, when set, fails every Predict call until cleared.
	err error

	// calls records every batch received, in order.
	calls [][]string
}

var _ ports.Classifier = (*MockClassifier)(nil)

// NewMockClassifier creates a mock over the given label set. Unscripted
// texts predict defaultLabel with confidence 1.0.
func NewMockClassifier(labels []string, defaultLabel string) *MockClassifier {
	return &MockClassifier{
		model:        "mock-classifier",
		labels:       labels,
		responses:    make(map[string]string),
		defaultLabel: defaultLabel,
		confidence:   1.0,
	}
}

// Script maps an exact input text to a label.
func (m *MockClassifier) Script(text, label string) *MockClassifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[text] = label
	return m
}

// SetConfidence overrides the confidence attached to every prediction.
func (m *MockClassifier) SetConfidence(c float64) *MockClassifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confidence = c
	return m
}

// FailWith makes every subsequent Predict call return err. Passing nil
// restores normal behavior.
func (m *MockClassifier) FailWith(err error) *MockClassifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Predict returns one scripted or default prediction per input text.
func (m *MockClassifier) Predict(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]string, len(batch))
	copy(recorded, batch)
	m.calls = append(m.calls, recorded)

	if m.err != nil {
		return nil, m.err
	}

	preds := make([]ports.Prediction, len(batch))
	for i, text := range batch {
		label, ok := m.responses[text]
		if !ok {
			label = m.defaultLabel
		}
		preds[i] = ports.Prediction{Label: label, Confidence: m.confidence}
	}
	return preds, nil
}

// Labels returns the configured label set.
func (m *MockClassifier) Labels() []string {
	labels := make([]string, len(m.labels))
	copy(labels, m.labels)
	return labels
}

// GetModel returns the mock model identifier.
func (m *MockClassifier) GetModel() string { return m.model }

// CallCount returns the number of Predict batches received.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of every batch received, in order.
func (m *MockClassifier) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([][]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}
