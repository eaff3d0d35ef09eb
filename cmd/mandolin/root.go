package main

import (
	"github.com/spf13/cobra"

	"github.com/supersonicwisd1/mandolin/internal/api"
	"github.com/supersonicwisd1/mandolin/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mandolin",
	Short: "Prior authorization form pipeline with OCR and LLM-backed field mapping",
	Long: `Mandolin fills prior authorization (PA) PDF forms from referral documents.

The pipeline:
  - Analyzes the PA form's interactive fields (text, checkboxes, choices)
  - OCRs the referral document (PDF or image)
  - Extracts canonical medical facts with an LLM
  - Maps facts onto form fields, semantically with a deterministic fallback
  - Writes the filled PDF to the output directory`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.mandolin/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "mandolin home directory (default: ~/.mandolin)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
