package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perturbench/perturbench/internal/domain"
)

func writeDataset(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestJSONLLoaderLoad(t *testing.T) {
	path := writeDataset(t, `
{"id": "s1", "text": "फिल्म बहुत अच्छी है", "label": "positive", "language": "hi"}
{"id": "s2", "text": "the plot was terrible", "label": "negative", "language": "en", "task": "classification"}

{"id": "s3", "text": "ছবিটা ভালো ছিল", "label": "positive", "language": "bangla"}
`)

	samples, err := NewJSONLLoader(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, "s1", samples[0].ID)
	assert.Equal(t, domain.LanguageHindi, samples[0].Language)
	assert.Equal(t, domain.TaskClassification, samples[0].Task)
	// Language aliases normalize onto the canonical code.
	assert.Equal(t, domain.LanguageBengali, samples[2].Language)
}

func TestJSONLLoaderLanguageFilter(t *testing.T) {
	path := writeDataset(t, `
{"id": "s1", "text": "चित्रपट छान होता", "label": "positive", "language": "mr"}
{"id": "s2", "text": "great film", "label": "positive", "language": "en"}
{"id": "s3", "text": "वाईट चित्रपट", "label": "negative", "language": "mr"}
`)

	loader := NewJSONLLoader(path, WithLanguages([]domain.Language{domain.LanguageMarathi}))
	samples, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "s1", samples[0].ID)
	assert.Equal(t, "s3", samples[1].ID)
}

func TestJSONLLoaderLimit(t *testing.T) {
	path := writeDataset(t, `
{"id": "s1", "text": "a", "label": "x", "language": "en"}
{"id": "s2", "text": "b", "label": "x", "language": "en"}
{"id": "s3", "text": "c", "label": "x", "language": "en"}
`)

	samples, err := NewJSONLLoader(path, WithLimit(2)).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}

func TestJSONLLoaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "malformed json",
			content: `{"id": "s1", "text":`,
			wantMsg: "parse sample",
		},
		{
			name:    "missing id",
			content: `{"text": "hello", "label": "x", "language": "en"}`,
			wantMsg: "missing sample id",
		},
		{
			name:    "missing text",
			content: `{"id": "s1", "label": "x", "language": "en"}`,
			wantMsg: "missing text",
		},
		{
			name:    "missing label",
			content: `{"id": "s1", "text": "hello", "language": "en"}`,
			wantMsg: "missing label",
		},
		{
			name:    "unknown language",
			content: `{"id": "s1", "text": "hello", "label": "x", "language": "xx"}`,
			wantMsg: "language",
		},
		{
			name: "duplicate id",
			content: `{"id": "s1", "text": "a", "label": "x", "language": "en"}
{"id": "s1", "text": "b", "label": "x", "language": "en"}`,
			wantMsg: "duplicate sample id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDataset(t, tt.content)
			_, err := NewJSONLLoader(path).Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestJSONLLoaderMissingFile(t *testing.T) {
	_, err := NewJSONLLoader("/nonexistent/samples.jsonl").Load(context.Background())
	require.Error(t, err)
}
