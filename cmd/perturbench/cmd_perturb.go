package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/perturbench/perturbench/infrastructure/perturb"
	"github.com/perturbench/perturbench/internal/domain"
)

var perturbFlags struct {
	kind      string
	intensity float64
	seed      int64
	language  string
}

var perturbCmd = &cobra.Command{
	Use:   "perturb [text]",
	Short: "Preview a perturbation on a single text",
	Long: `Perturb applies one perturbation to a text and prints the result,
for eyeballing what a kind and intensity actually do before committing to
a full run.

Usage:
  perturbench perturb --kind char_delete --intensity 0.1 --language hi "फिल्म बहुत अच्छी है"
  perturbench perturb --kind codemix --intensity 0.5 --language hi "घर में किताब है"`,
	Args: cobra.ExactArgs(1),
	RunE: runPerturb,
}

func init() {
	f := perturbCmd.Flags()
	f.StringVarP(&perturbFlags.kind, "kind", "k", "", "Perturbation kind (char_delete, char_swap, vowel_drop, codemix, paraphrase)")
	f.Float64VarP(&perturbFlags.intensity, "intensity", "i", 0.1, "Perturbation intensity in [0,1]")
	f.Int64VarP(&perturbFlags.seed, "seed", "s", 42, "Deterministic seed")
	f.StringVarP(&perturbFlags.language, "language", "l", "hi", "Text language (en, hi, mr, bn)")
	_ = perturbCmd.MarkFlagRequired("kind")
}

func runPerturb(cmd *cobra.Command, args []string) error {
	kind, err := domain.ParsePerturbationKind(perturbFlags.kind)
	if err != nil {
		return err
	}
	language, err := domain.ParseLanguage(perturbFlags.language)
	if err != nil {
		return err
	}

	resources, err := perturb.LoadResources()
	if err != nil {
		return err
	}
	engine := perturb.NewEngine(resources, nil)

	sample := domain.Sample{
		ID:       "preview",
		Text:     args[0],
		Language: language,
		Task:     domain.TaskClassification,
	}
	spec := domain.PerturbationSpec{
		Kind:      kind,
		Intensity: perturbFlags.intensity,
		Seed:      perturbFlags.seed,
	}

	variants, err := engine.GenerateVariants(cmd.Context(), sample, []domain.PerturbationSpec{spec})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "clean:     %s\n", variants[0].Text)
	fmt.Fprintf(out, "perturbed: %s\n", variants[1].Text)

	d := engine.Diagnostics()
	if kind == domain.KindCodeMix {
		fmt.Fprintf(out, "substitutions: %d requested, %d actual, %d lexicon misses\n",
			d.RequestedSubstitutions, d.ActualSubstitutions, d.LexiconMisses)
	}
	if kind == domain.KindParaphrase && len(variants[1].PivotWordsChanged) > 0 {
		fmt.Fprintf(out, "pivot words changed: %s\n", strings.Join(variants[1].PivotWordsChanged, ", "))
	}
	return nil
}
