package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "perturbench",
	Short: "Robustness benchmark for classifiers under linguistic noise",
	Long: "Perturbench measures how much a text classifier degrades when its\n" +
		"input is perturbed with character noise, vowel-sign drops, code-mixing,\n" +
		"or paraphrasing, across English, Hindi, Marathi, and Bengali.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(perturbCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
