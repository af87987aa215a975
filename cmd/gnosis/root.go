// gnosis is the experiment-analytics workbench CLI: generate completions,
// judge them, aggregate ratings, render charts, and track runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gnosis/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "gnosis",
	Short: "Experiment analytics workbench for LLM pipeline outputs",
	Long: "Gnosis evaluates LLM pipeline outputs end to end: inference against\n" +
		"local models, keyword judging, multi-level aggregation, statistics,\n" +
		"visualization and experiment tracking.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.Init(logging.ParseLevel(rootFlags.logLevel), rootFlags.logFormat)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(judgeCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(visualizeCmd)
	rootCmd.AddCommand(experimentsCmd)
	rootCmd.AddCommand(addinCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
