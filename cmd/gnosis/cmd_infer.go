package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gnosis/internal/inference"
)

var inferFlags struct {
	input   string
	output  string
	model   string
	baseURL string
	workers int
}

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Generate completions for a prompts CSV via Ollama",
	Long: `Infer sends every row's prompt column to an Ollama server and appends
completion and completion_tokens columns. Rows can override the model with a
model_id or model column.`,
	RunE: runInfer,
}

func init() {
	f := inferCmd.Flags()
	f.StringVarP(&inferFlags.input, "input", "i", "", "Prompts CSV path (required)")
	f.StringVarP(&inferFlags.output, "output", "o", "", "Completions CSV path (required)")
	f.StringVarP(&inferFlags.model, "model", "m", "", "Default model name (required)")
	f.StringVar(&inferFlags.baseURL, "base-url", "", "Ollama base URL (default http://localhost:11434)")
	f.IntVar(&inferFlags.workers, "workers", 0, "Worker pool size (0 = GOMAXPROCS)")
	inferCmd.MarkFlagRequired("input")
	inferCmd.MarkFlagRequired("output")
	inferCmd.MarkFlagRequired("model")
}

func runInfer(cmd *cobra.Command, _ []string) error {
	client := inference.NewOllamaClient(inferFlags.baseURL)
	n, err := inference.Run(cmd.Context(), inference.Config{
		Input:        inferFlags.input,
		Output:       inferFlags.output,
		DefaultModel: inferFlags.model,
		Workers:      inferFlags.workers,
	}, client)
	if err != nil {
		return fmt.Errorf("infer: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d completions -> %s\n", n, inferFlags.output)
	return nil
}
