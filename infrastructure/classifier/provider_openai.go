package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/perturbench/perturbench/internal/ports"
)

// OpenAIDefaultModel is the default model for the OpenAI provider.
const OpenAIDefaultModel = "gpt-4o-mini"

func init() {
	RegisterProviderFactory("openai", newOpenAIProvider)
}

// openAIProvider implements CoreClassifier over the OpenAI chat API.
// With a custom BaseURL it also serves any OpenAI-compatible inference
// server, which is how locally hosted fine-tuned models are evaluated.
type openAIProvider struct {
	BaseProvider
	client          *openai.Client
	prompts         *promptBuilder
	errorClassifier *ErrorClassifier
}

func newOpenAIProvider(config ClientConfig) (CoreClassifier, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = OpenAIDefaultModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		validatedURL, err := ValidateBaseURL(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid BaseURL: %w", err)
		}
		clientConfig.BaseURL = validatedURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: ValidateTimeout(config.Timeout)}
	}

	return &openAIProvider{
		BaseProvider:    BaseProvider{model: model},
		client:          openai.NewClientWithConfig(clientConfig),
		prompts:         newPromptBuilder(config.Labels),
		errorClassifier: &ErrorClassifier{Provider: "openai"},
	}, nil
}

// ClassifyBatch classifies each text with one chat completion request.
// Requests within a batch run sequentially; batch-level concurrency is the
// evaluator's concern.
func (p *openAIProvider) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
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

func (p *openAIProvider) classifyOne(ctx context.Context, text string) (ports.Prediction, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.GetModel(),
		Temperature: 0,
		MaxTokens:   16,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.prompts.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: p.prompts.userPrompt(text)},
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return ports.Prediction{}, p.handleError(err)
	}
	if len(resp.Choices) == 0 {
		return ports.Prediction{}, ErrNoResponseChoice
	}

	label, err := p.prompts.parseLabel(resp.Choices[0].Message.Content)
	if err != nil {
		return ports.Prediction{}, err
	}
	return ports.Prediction{Label: label, Confidence: 1.0}, nil
}

// handleError classifies and wraps errors from the OpenAI API, mapping
// length-limit rejections onto ErrInputTooLong so the evaluator can skip
// the sample.
func (p *openAIProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return p.errorClassifier.ClassifyContextError(err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "context_length_exceeded" {
			return fmt.Errorf("%w: %s", ErrInputTooLong, apiErr.Message)
		}
		message := apiErr.Message
		if message == "" {
			message = "unknown error"
		}
		return p.errorClassifier.ClassifyHTTPError(apiErr.HTTPStatusCode, message, err)
	}

	return NewProviderError("openai", ErrorTypeUnknown, 0, "request failed", err)
}
