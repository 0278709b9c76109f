package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/perturbench/perturbench/internal/ports"
)

// AnthropicDefaultModel is the default model for the Anthropic provider.
const AnthropicDefaultModel = "claude-3-5-haiku-20241022"

func init() {
	RegisterProviderFactory("anthropic", newAnthropicProvider)
}

// anthropicProvider implements CoreClassifier over Anthropic's Messages API.
type anthropicProvider struct {
	BaseProvider
	client          anthropic.Client
	prompts         *promptBuilder
	errorClassifier *ErrorClassifier
}

func newAnthropicProvider(config ClientConfig) (CoreClassifier, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = AnthropicDefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		validatedURL, err := ValidateBaseURL(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid BaseURL: %w", err)
		}
		opts = append(opts, option.WithBaseURL(validatedURL))
	}

	return &anthropicProvider{
		BaseProvider:    BaseProvider{model: model},
		client:          anthropic.NewClient(opts...),
		prompts:         newPromptBuilder(config.Labels),
		errorClassifier: &ErrorClassifier{Provider: "anthropic"},
	}, nil
}

// ClassifyBatch classifies each text with one Messages API request.
func (p *anthropicProvider) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	preds := make([]ports.Prediction, 0, len(batch))
	for _, text := range batch {
		pred, err := p.classifyOne(ctx, text)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func (p *anthropicProvider) classifyOne(ctx context.Context, text string) (ports.Prediction, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.GetModel()),
		MaxTokens:   16,
		Temperature: anthropic.Float(0),
		System:      []anthropic.TextBlockParam{{Text: p.prompts.systemPrompt()}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.prompts.userPrompt(text))),
		},
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return ports.Prediction{}, p.handleError(err)
	}

	var responseText strings.Builder
	for _, block := range message.Content {
		switch content := block.AsAny().(type) {
		case anthropic.TextBlock:
			responseText.WriteString(content.Text)
		}
	}
	if responseText.Len() == 0 {
		return ports.Prediction{}, ErrEmptyResponse
	}

	label, err := p.prompts.parseLabel(responseText.String())
	if err != nil {
		return ports.Prediction{}, err
	}
	return ports.Prediction{Label: label, Confidence: 1.0}, nil
}

// handleError classifies errors from the Anthropic SDK into the shared
// ProviderError taxonomy.
func (p *anthropicProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return p.errorClassifier.ClassifyContextError(err)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return p.errorClassifier.ClassifyHTTPError(anthropicErr.StatusCode, anthropicErr.Error(), err)
	}

	return NewProviderError("anthropic", ErrorTypeNetwork, 0, "request failed", err)
}
