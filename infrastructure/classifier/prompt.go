package classifier

import (
	"fmt"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// maxLabelEditDistance bounds the fuzzy match between a model response and
// the configured label set. Anything further away than this is an
// unrecognized label rather than a sloppy spelling of a known one.
const maxLabelEditDistance = 2

// BaseProvider provides common, thread-safe model-name handling for all
// classifier providers.
type BaseProvider struct {
	mu    sync.RWMutex
	model string
}

// GetModel returns the currently configured model name.
// It is safe for concurrent use.
func (b *BaseProvider) GetModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

// SetModel updates the model name. It is safe for concurrent use.
func (b *BaseProvider) SetModel(model string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = model
}

var labelFold = cases.Fold()

// promptBuilder constructs zero-shot classification prompts and parses
// label responses for a fixed label set.
type promptBuilder struct {
	labels []string
	// folded holds the case-folded labels, index-aligned with labels.
	folded []string
}

func newPromptBuilder(labels []string) *promptBuilder {
	folded := make([]string, len(labels))
	for i, l := range labels {
		folded[i] = labelFold.String(strings.TrimSpace(l))
	}
	return &promptBuilder{labels: labels, folded: folded}
}

// systemPrompt instructs the model to behave as a closed-set classifier.
func (pb *promptBuilder) systemPrompt() string {
	return "You are a text classification system. " +
		"Answer with exactly one label from the provided set and nothing else. " +
		"The input may be in English, Hindi, Marathi, or Bengali, and may contain " +
		"spelling noise or mixed languages; classify it anyway."
}

// userPrompt builds the per-text classification request.
func (pb *promptBuilder) userPrompt(text string) string {
	return fmt.Sprintf("Labels: %s\n\nText: %s\n\nLabel:", strings.Join(pb.labels, ", "), text)
}

// parseLabel maps a raw model response onto the configured label set.
// Exact case-folded matches win; otherwise the closest label within
// maxLabelEditDistance is accepted, tolerating minor decoration like
// trailing periods or quotes. Responses further away fail with
// ErrUnrecognizedLabel.
func (pb *promptBuilder) parseLabel(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "\"'`.:! \n\t")
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty response", ErrUnrecognizedLabel)
	}
	// Models occasionally answer in a sentence; keep the first line.
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		cleaned = strings.TrimSpace(cleaned[:idx])
	}
	folded := labelFold.String(cleaned)

	for i, f := range pb.folded {
		if f == folded {
			return pb.labels[i], nil
		}
	}

	best, bestDist := -1, maxLabelEditDistance+1
	for i, f := range pb.folded {
		if d := levenshtein.ComputeDistance(folded, f); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		return pb.labels[best], nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedLabel, raw)
}
