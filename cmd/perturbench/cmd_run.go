package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/perturbench/perturbench/infrastructure/classifier"
	"github.com/perturbench/perturbench/infrastructure/dataset"
	"github.com/perturbench/perturbench/infrastructure/perturb"
	"github.com/perturbench/perturbench/infrastructure/storage"
	"github.com/perturbench/perturbench/infrastructure/telemetry"
	"github.com/perturbench/perturbench/internal/application"
	"github.com/perturbench/perturbench/internal/domain"
	"github.com/perturbench/perturbench/internal/ports"
)

var runFlags struct {
	configPath string
	noMetrics  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a robustness experiment from a config file",
	Long: `Run loads a YAML experiment config, perturbs every dataset sample
across the configured kind and intensity grid, collects classifier
predictions, and reports accuracy, macro-F1, relative drop, consistency,
and flip rate per (language, task, kind, intensity) group.

The classifier API key is read from the environment variable named in the
config's classifier.api_key_env field.`,
	Args: cobra.NoArgs,
	RunE: runExperiment,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.configPath, "config", "c", "experiment.yaml", "Path to experiment config")
	f.BoolVar(&runFlags.noMetrics, "no-metrics", false, "Disable Prometheus metric registration")
	_ = runCmd.MarkFlagFilename("config", "yaml", "yml")
}

func runExperiment(cmd *cobra.Command, _ []string) error {
	cfg, err := application.LoadExperimentConfig(runFlags.configPath)
	if err != nil {
		return err
	}

	var collector ports.MetricsCollector
	if !runFlags.noMetrics {
		collector = telemetry.NewPrometheusMetrics()
	}

	clf, err := buildClassifier(cfg, collector)
	if err != nil {
		return err
	}

	resources, err := perturb.LoadResources()
	if err != nil {
		return err
	}
	engine := perturb.NewEngine(resources, collector)

	loader := dataset.NewJSONLLoader(cfg.Dataset.Path,
		dataset.WithLanguages(cfg.LanguageFilter()),
		dataset.WithLimit(cfg.Dataset.Limit),
	)

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	eval := application.NewEvaluator(cfg, loader, engine, clf, store, collector)
	report, err := eval.Run(cmd.Context())
	if err != nil {
		return err
	}

	printReport(cmd, cfg, eval, report)
	return nil
}

func buildClassifier(cfg *application.ExperimentConfig, collector ports.MetricsCollector) (ports.Classifier, error) {
	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}

	chain := []classifier.Middleware{
		classifier.TracingMiddleware(),
		classifier.MetricsMiddleware(collector),
	}
	if cfg.Classifier.CircuitBreakerFailures > 0 {
		chain = append(chain, classifier.CircuitBreakerMiddlewareWithMetrics(
			cfg.Classifier.CircuitBreakerFailures, cfg.Classifier.CircuitBreakerCooldown.Std(), collector))
	}
	chain = append(chain,
		classifier.RetryMiddleware(cfg.Classifier.MaxRetries,
			classifier.DefaultRetryBaseDelay, classifier.DefaultRetryMaxDelay))
	if cfg.Classifier.RequestsPerSecond > 0 {
		chain = append(chain, classifier.RateLimitMiddleware(
			rate.Limit(cfg.Classifier.RequestsPerSecond), cfg.Classifier.Burst))
	}
	chain = append(chain, classifier.TimeoutMiddleware(cfg.Classifier.Timeout.Std()))

	return classifier.NewClient(cfg.Classifier.Provider, classifier.ClientConfig{
		APIKey:     apiKey,
		Model:      cfg.Classifier.Model,
		BaseURL:    cfg.Classifier.BaseURL,
		Labels:     cfg.Classifier.Labels,
		Middleware: chain,
	})
}

func buildStore(cfg *application.ExperimentConfig) (ports.ResultStore, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return storage.OpenSQLite(cfg.Store.Path)
	default:
		return storage.NewJSONFileStore(cfg.Store.Path)
	}
}

func printReport(cmd *cobra.Command, cfg *application.ExperimentConfig, eval *application.Evaluator, report domain.RunReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s (%s), %d groups, %d flips, %d skips\n",
		report.RunID, report.Model, len(report.Results), len(report.Flips), len(report.Skips))

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LANG\tTASK\tKIND\tINTENSITY\tACC\tACC_CLEAN\tMACRO_F1\tDROP%\tCONSISTENCY\tFLIP\tN")
	for _, r := range report.Results {
		drop := "n/a"
		if r.RelativeDrop != nil {
			drop = fmt.Sprintf("%.1f", *r.RelativeDrop)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.3f\t%.3f\t%.3f\t%s\t%.3f\t%.3f\t%d\n",
			r.Language, r.Task, r.PerturbationKind, r.Intensity,
			r.Accuracy, r.AccuracyClean, r.MacroF1, drop,
			r.Consistency, r.FlipRate, r.NSamples)
	}
	_ = w.Flush()

	d := report.Diagnostics
	fmt.Fprintf(out, "substitutions: %d requested, %d actual, %d lexicon misses, %d pivot words changed\n",
		d.RequestedSubstitutions, d.ActualSubstitutions, d.LexiconMisses, d.PivotWordsChanged)

	if threshold := cfg.Run.HighConfidenceThreshold; threshold > 0 {
		failures := eval.HighConfidenceFailures(threshold)
		fmt.Fprintf(out, "high-confidence failures (wrong at confidence >= %.2f): %d\n",
			threshold, len(failures))
	}
}
