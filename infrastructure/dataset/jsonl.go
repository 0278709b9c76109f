// Package dataset loads evaluation samples from local files.
package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

// maxLineBytes bounds a single JSONL record. Review texts are short;
// anything beyond this is a malformed file, not a sample.
const maxLineBytes = 1 << 20

// jsonlRecord mirrors the on-disk sample format.
type jsonlRecord struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Label    string `json:"label"`
	Language string `json:"language"`
	Task     string `json:"task"`
}

// JSONLLoader reads samples from a JSON Lines file, one sample per line.
// Blank lines are skipped; any other malformed line fails the load with the
// line number so dataset problems surface before an expensive run.
type JSONLLoader struct {
	path      string
	languages map[domain.Language]bool
	limit     int
}

var _ ports.DatasetLoader = (*JSONLLoader)(nil)

// JSONLOption configures a JSONLLoader.
type JSONLOption func(*JSONLLoader)

// WithLanguages restricts loading to the given languages.
// An empty list keeps every language.
func WithLanguages(languages []domain.Language) JSONLOption {
	return func(l *JSONLLoader) {
		if len(languages) == 0 {
			return
		}
		l.languages = make(map[domain.Language]bool, len(languages))
		for _, lang := range languages {
			l.languages[lang] = true
		}
	}
}

// WithLimit caps the number of samples loaded after language filtering.
// Zero or negative means no cap.
func WithLimit(n int) JSONLOption {
	return func(l *JSONLLoader) { l.limit = n }
}

// NewJSONLLoader creates a loader for the JSONL file at path.
func NewJSONLLoader(path string, opts ...JSONLOption) *JSONLLoader {
	l := &JSONLLoader{path: path}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, validates, and filters all samples from the file.
func (l *JSONLLoader) Load(ctx context.Context) ([]domain.Sample, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var samples []domain.Sample
	seen := make(map[string]bool)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: parse sample: %w", lineNo, err)
		}

		sample, err := l.toSample(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if sample == nil {
			continue
		}
		if seen[sample.ID] {
			return nil, fmt.Errorf("line %d: duplicate sample id %q", lineNo, sample.ID)
		}
		seen[sample.ID] = true

		samples = append(samples, *sample)
		if l.limit > 0 && len(samples) >= l.limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	return samples, nil
}

// toSample validates one record and applies the language filter.
// A nil sample with nil error means the record was filtered out.
func (l *JSONLLoader) toSample(rec jsonlRecord) (*domain.Sample, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("missing sample id")
	}
	if rec.Text == "" {
		return nil, fmt.Errorf("sample %q: missing text", rec.ID)
	}
	if rec.Label == "" {
		return nil, fmt.Errorf("sample %q: missing label", rec.ID)
	}

	lang, err := domain.ParseLanguage(rec.Language)
	if err != nil {
		return nil, fmt.Errorf("sample %q: %w", rec.ID, err)
	}

	task := domain.TaskClassification
	if rec.Task != "" {
		task, err = domain.ParseTask(rec.Task)
		if err != nil {
			return nil, fmt.Errorf("sample %q: %w", rec.ID, err)
		}
	}

	if l.languages != nil && !l.languages[lang] {
		return nil, nil
	}

	return &domain.Sample{
		ID:        rec.ID,
		Text:      rec.Text,
		GoldLabel: rec.Label,
		Language:  lang,
		Task:      task,
	}, nil
}
