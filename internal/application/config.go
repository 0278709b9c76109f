// Package application wires the perturbation engine, classifier, and metric
// computation into runnable robustness experiments.
package application

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/perturbench/perturbench/internal/domain"
)

var validate = validator.New()

// ExperimentConfig is the complete specification of one robustness run and
// the primary configuration entry point for the system.
type ExperimentConfig struct {
	// Name is a human-readable identifier for the experiment.
	Name string `yaml:"name" validate:"required,min=1,max=255"`

	// Seed fixes every randomized choice in the run so two runs with the
	// same config and dataset produce byte-identical perturbations.
	Seed int64 `yaml:"seed"`

	// Dataset configures where samples are loaded from.
	Dataset DatasetConfig `yaml:"dataset" validate:"required"`

	// Classifier configures the model under evaluation.
	Classifier ClassifierConfig `yaml:"classifier" validate:"required"`

	// Perturbations lists the kind and intensity grid to sweep.
	Perturbations []PerturbationConfig `yaml:"perturbations" validate:"required,min=1,dive"`

	// Run holds execution tuning knobs.
	Run RunConfig `yaml:"run"`

	// Store configures result persistence.
	Store StoreConfig `yaml:"store"`
}

// DatasetConfig locates and filters the evaluation dataset.
type DatasetConfig struct {
	// Path is the JSONL dataset file.
	Path string `yaml:"path" validate:"required"`

	// Languages restricts the run to these languages; empty keeps all.
	Languages []string `yaml:"languages" validate:"dive,min=2"`

	// Limit caps the number of samples; zero means no cap.
	Limit int `yaml:"limit" validate:"min=0"`
}

// ClassifierConfig selects and tunes the model under evaluation.
type ClassifierConfig struct {
	// Provider selects the classifier backend (openai, anthropic, google,
	// or a registered custom provider).
	Provider string `yaml:"provider" validate:"required"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// Keys never appear in config files.
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`

	// BaseURL overrides the provider endpoint, for OpenAI-compatible
	// local inference servers.
	BaseURL string `yaml:"base_url"`

	// Labels is the closed label set for the task.
	Labels []string `yaml:"labels" validate:"required,min=2"`

	// Timeout bounds each classifier batch request.
	Timeout Duration `yaml:"timeout"`

	// MaxRetries is the number of retry attempts for transient failures.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// RequestsPerSecond and Burst configure client-side rate limiting.
	// Zero RequestsPerSecond disables the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
	Burst             int     `yaml:"burst" validate:"min=0"`

	// CircuitBreakerFailures opens the circuit after this many consecutive
	// infrastructure failures. Zero disables the breaker.
	CircuitBreakerFailures int `yaml:"circuit_breaker_failures" validate:"min=0"`

	// CircuitBreakerCooldown is how long an open circuit waits before
	// probing the provider again.
	CircuitBreakerCooldown Duration `yaml:"circuit_breaker_cooldown"`
}

// Duration is a time.Duration that YAML configs can write either as a Go
// duration string ("30s", "2m") or as an integer number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var seconds int64
		if err := value.Decode(&seconds); err != nil {
			return err
		}
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// PerturbationConfig is one cell row of the perturbation grid: a kind with
// the intensity levels to evaluate it at.
type PerturbationConfig struct {
	// Kind names the perturbation.
	Kind string `yaml:"kind" validate:"required"`

	// Intensities lists the levels to sweep for this kind. Each level
	// forms its own metric group.
	Intensities []float64 `yaml:"intensities" validate:"required,min=1,dive,min=0,max=1"`
}

// RunConfig holds execution tuning for the evaluator.
type RunConfig struct {
	// Workers is the number of concurrent sample workers.
	Workers int `yaml:"workers" validate:"min=0,max=256"`

	// MaxFlipRecords caps the qualitative flip records kept per run.
	// Zero keeps all of them.
	MaxFlipRecords int `yaml:"max_flip_records" validate:"min=0"`

	// HighConfidenceThreshold marks perturbed mispredictions at or above
	// this confidence as high-confidence failures in the flip records.
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold" validate:"min=0,max=1"`
}

// StoreConfig selects and locates the result store backend.
type StoreConfig struct {
	// Backend is "sqlite" or "json".
	Backend string `yaml:"backend" validate:"omitempty,oneof=sqlite json"`

	// Path is the database file (sqlite) or output directory (json).
	Path string `yaml:"path"`
}

// Defaults applied to fields the config file leaves unset.
const (
	defaultWorkers    = 4
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultBurst      = 1
	defaultCooldown   = 30 * time.Second
	defaultStorePath  = "results"
)

// LoadExperimentConfig reads, parses, validates, and normalizes a YAML
// experiment config.
func LoadExperimentConfig(path string) (*ExperimentConfig, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseExperimentConfig(data)
}

// ParseExperimentConfig parses and validates raw YAML config bytes.
func ParseExperimentConfig(data []byte) (*ExperimentConfig, error) {
	var cfg ExperimentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse config: %v", domain.ErrInvalidConfiguration, err)
	}

	cfg.applyDefaults()

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	if err := cfg.validateSemantics(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *ExperimentConfig) applyDefaults() {
	if c.Run.Workers == 0 {
		c.Run.Workers = defaultWorkers
	}
	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = Duration(defaultTimeout)
	}
	if c.Classifier.MaxRetries == 0 {
		c.Classifier.MaxRetries = defaultMaxRetries
	}
	if c.Classifier.RequestsPerSecond > 0 && c.Classifier.Burst == 0 {
		c.Classifier.Burst = defaultBurst
	}
	if c.Classifier.CircuitBreakerFailures > 0 && c.Classifier.CircuitBreakerCooldown == 0 {
		c.Classifier.CircuitBreakerCooldown = Duration(defaultCooldown)
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "json"
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
}

// validateSemantics checks the values the struct tags cannot express:
// perturbation kinds and language codes must parse, and a kind may appear
// only once in the grid.
func (c *ExperimentConfig) validateSemantics() error {
	seen := make(map[domain.PerturbationKind]bool)
	for _, p := range c.Perturbations {
		kind, err := domain.ParsePerturbationKind(p.Kind)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
		}
		if seen[kind] {
			return fmt.Errorf("%w: perturbation kind %q listed twice", domain.ErrInvalidConfiguration, kind)
		}
		seen[kind] = true

		// A repeated level would evaluate the same (kind, intensity) group
		// twice and collide on the stored prediction keys.
		levels := make(map[float64]bool, len(p.Intensities))
		for _, intensity := range p.Intensities {
			if levels[intensity] {
				return fmt.Errorf("%w: intensity %g listed twice for kind %q",
					domain.ErrInvalidConfiguration, intensity, kind)
			}
			levels[intensity] = true
		}
	}

	for _, lang := range c.Dataset.Languages {
		if _, err := domain.ParseLanguage(lang); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
		}
	}

	return nil
}

// Specs expands the perturbation grid into concrete PerturbationSpecs,
// all carrying the experiment seed.
func (c *ExperimentConfig) Specs() []domain.PerturbationSpec {
	var specs []domain.PerturbationSpec
	for _, p := range c.Perturbations {
		kind, _ := domain.ParsePerturbationKind(p.Kind)
		for _, intensity := range p.Intensities {
			specs = append(specs, domain.PerturbationSpec{
				Kind:      kind,
				Intensity: intensity,
				Seed:      c.Seed,
			})
		}
	}
	return specs
}

// LanguageFilter returns the parsed language restriction, or nil when the
// run covers every language in the dataset.
func (c *ExperimentConfig) LanguageFilter() []domain.Language {
	if len(c.Dataset.Languages) == 0 {
		return nil
	}
	languages := make([]domain.Language, 0, len(c.Dataset.Languages))
	for _, lang := range c.Dataset.Languages {
		parsed, err := domain.ParseLanguage(lang)
		if err != nil {
			continue
		}
		languages = append(languages, parsed)
	}
	return languages
}

// APIKey resolves the classifier API key from the configured environment
// variable.
func (c *ExperimentConfig) APIKey() (string, error) {
	key := os.Getenv(c.Classifier.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%w: environment variable %s is empty",
			domain.ErrInvalidConfiguration, c.Classifier.APIKeyEnv)
	}
	return key, nil
}
