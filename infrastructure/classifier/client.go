// Package classifier provides a unified interface for obtaining label
// predictions from LLM-backed zero-shot classifiers, with built-in support
// for rate limiting, retries, timeouts, and metrics.
//
// The package abstracts multiple providers (OpenAI-compatible, Anthropic,
// Google) behind a common interface while adding operational cross-cutting
// concerns through a middleware chain. The evaluator consumes only the
// ports.Classifier interface; switching providers or adding middleware never
// changes evaluation code.
//
// Basic usage:
//
//	clf, err := classifier.NewClient("openai", classifier.ClientConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	    Labels: []string{"positive", "negative"},
//	    Middleware: []classifier.Middleware{
//	        classifier.TimeoutMiddleware(30 * time.Second),
//	        classifier.RetryMiddleware(2, time.Second, 10*time.Second),
//	    },
//	})
//	preds, err := clf.Predict(ctx, []string{"फिल्म बहुत अच्छी है"})
package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/perturbench/perturbench/internal/ports"
)

// CoreClassifier defines the minimal interface providers must implement.
// The middleware system wraps any conforming implementation.
type CoreClassifier interface {
	// ClassifyBatch predicts one label per input text, in input order.
	// A failure anywhere in the batch fails the whole call; the evaluator
	// converts batch failures into per-sample skips.
	ClassifyBatch(ctx context.Context, batch []string) ([]ports.Prediction, error)

	// GetModel returns the currently configured model name.
	GetModel() string

	// SetModel updates the model used for subsequent requests.
	SetModel(model string)
}

// Middleware wraps a CoreClassifier to add cross-cutting functionality such
// as rate limiting, retries, or metrics without modifying provider logic.
type Middleware func(CoreClassifier) CoreClassifier

// ClientConfig holds all configuration for creating a classifier client.
type ClientConfig struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model specifies which model to use for requests.
	Model string

	// BaseURL overrides the provider's default endpoint. This is how
	// OpenAI-compatible local inference servers are reached.
	BaseURL string

	// Labels is the closed label set predictions are drawn from.
	// Responses outside the set are fuzzily matched back onto it or
	// rejected.
	Labels []string

	// Timeout sets the maximum duration for individual provider requests.
	// Zero means no timeout at the transport level.
	Timeout time.Duration

	// Middleware is applied in order; the first entry is outermost.
	Middleware []Middleware
}

// Client implements ports.Classifier by delegating to a middleware-wrapped
// provider core.
type Client struct {
	core   CoreClassifier
	labels []string
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a classifier client for the given provider type.
// It validates configuration, assembles the middleware chain, and returns a
// ready-to-use client.
func NewClient(providerType string, config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if len(config.Labels) < 2 {
		return nil, fmt.Errorf("%w: at least two labels required, got %d",
			ErrInvalidLabelSet, len(config.Labels))
	}

	factory, ok := providerFactories[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}

	core, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	// Apply middleware in reverse order so the first middleware is the
	// outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		core = config.Middleware[i](core)
	}

	labels := make([]string, len(config.Labels))
	copy(labels, config.Labels)

	return &Client{core: core, labels: labels}, nil
}

// Predict classifies every text in the batch, returning one prediction per
// input in input order.
func (c *Client) Predict(ctx context.Context, batch []string) ([]ports.Prediction, error) {
	preds, err := c.core.ClassifyBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(preds) != len(batch) {
		return nil, fmt.Errorf("%w: got %d predictions for %d inputs",
			ErrBatchSizeMismatch, len(preds), len(batch))
	}
	return preds, nil
}

// Labels returns the closed label set this client predicts from.
func (c *Client) Labels() []string {
	labels := make([]string, len(c.labels))
	copy(labels, c.labels)
	return labels
}

// GetModel returns the configured model name from the underlying provider.
func (c *Client) GetModel() string { return c.core.GetModel() }

// ProviderFactory creates a CoreClassifier implementation from configuration.
type ProviderFactory func(ClientConfig) (CoreClassifier, error)

// Provider factory registry for extensibility. Custom providers can be
// registered at runtime without modifying the package.
var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a custom classifier provider factory.
func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	providerFactories[providerType] = factory
}
