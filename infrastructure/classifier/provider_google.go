package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/perturbench/perturbench/internal/ports"
)

// GoogleDefaultModel is the default model for the Google provider.
const GoogleDefaultModel = "gemini-2.0-flash-exp"

func init() {
	RegisterProviderFactory("google", newGoogleProvider)
}

// googleProvider implements CoreClassifier over Google's Gemini API.
type googleProvider struct {
	BaseProvider
	client          *genai.Client
	prompts         *promptBuilder
	errorClassifier *ErrorClassifier
}

func newGoogleProvider(config ClientConfig) (CoreClassifier, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	model := config.Model
	if model == "" {
		model = GoogleDefaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}

	return &googleProvider{
		BaseProvider:    BaseProvider{model: model},
		client:          client,
		prompts:         newPromptBuilder(config.Labels),
		errorClassifier: &ErrorClassifier{Provider: "google"},
	}, nil
}

// ClassifyBatch classifies each text with one GenerateContent request.
// Gemini has no separate system role, so the system prompt is prepended
// to the user prompt.
func (p *googleProvider) ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error) {
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

func (p *googleProvider) classifyOne(ctx context.Context, text string) (ports.Prediction, error) {
	prompt := fmt.Sprintf("System: %s\n\nUser: %s", p.prompts.systemPrompt(), p.prompts.userPrompt(text))
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0)),
		MaxOutputTokens: 16,
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.GetModel(), contents, config)
	if err != nil {
		return ports.Prediction{}, p.handleError(err)
	}

	content := resp.Text()
	if content == "" {
		return ports.Prediction{}, ErrEmptyResponse
	}

	label, err := p.prompts.parseLabel(content)
	if err != nil {
		return ports.Prediction{}, err
	}
	return ports.Prediction{Label: label, Confidence: 1.0}, nil
}

// handleError provides structured error handling for Google API responses.
// Safety-filter blocks are mapped onto ErrorTypeBadRequest so the evaluator
// records a skip instead of failing the run; heavily perturbed text
// occasionally trips those filters.
func (p *googleProvider) handleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return p.errorClassifier.ClassifyContextError(err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" && len(apiErr.Errors) > 0 {
			message = apiErr.Errors[0].Message
		}

		if containsContentPolicyError(apiErr) {
			return NewProviderError("google", ErrorTypeBadRequest, apiErr.Code,
				"request blocked by safety filters", err)
		}

		return p.errorClassifier.ClassifyHTTPError(apiErr.Code, message, err)
	}

	return NewProviderError("google", ErrorTypeUnknown, 0, "request failed", err)
}

// containsContentPolicyError checks if a Google API error is related to
// content policy violations.
func containsContentPolicyError(apiErr *googleapi.Error) bool {
	if apiErr.Message != "" {
		lower := strings.ToLower(apiErr.Message)
		if strings.Contains(lower, "safety") ||
			strings.Contains(lower, "policy") ||
			strings.Contains(lower, "blocked") {
			return true
		}
	}

	for _, e := range apiErr.Errors {
		if e.Reason == "SAFETY" || e.Reason == "BLOCKED" {
			return true
		}
	}

	return false
}
