package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

// JSONFileStore implements ports.ResultStore by writing one directory per
// run: report.json with the full report and predictions.jsonl with raw
// per-variant predictions.
type JSONFileStore struct {
	dir string

	mu sync.Mutex
}

var _ ports.ResultStore = (*JSONFileStore)(nil)

// NewJSONFileStore creates a store rooted at dir, creating it if needed.
func NewJSONFileStore(dir string) (*JSONFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &JSONFileStore{dir: dir}, nil
}

// SaveReport writes the full run report to <dir>/<run_id>/report.json.
func (s *JSONFileStore) SaveReport(_ context.Context, report domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runDir := filepath.Join(s.dir, report.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(runDir, "report.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// SavePredictions appends predictions as JSON lines to
// <dir>/<run_id>/predictions.jsonl.
func (s *JSONFileStore) SavePredictions(_ context.Context, runID string, records []domain.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runDir := filepath.Join(s.dir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	path := filepath.Join(runDir, "predictions.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open predictions file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode prediction: %w", err)
		}
	}
	return nil
}

// Close is a no-op; files are closed per write.
func (s *JSONFileStore) Close() error { return nil }
