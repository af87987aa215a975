package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gnosis/internal/judge"
)

var judgeFlags struct {
	input       string
	output      string
	templateDir string
	workers     int
}

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Rate completions with the keyword judge",
	Long: `Judge rates each completion in the input CSV on a 1-5 scale from
positive/negative keyword hits and appends judge_rating and
judge_justification columns. Keyword templates live in --template-dir as
positive_keywords.txt and negative_keywords.txt.`,
	RunE: runJudge,
}

func init() {
	f := judgeCmd.Flags()
	f.StringVarP(&judgeFlags.input, "input", "i", "", "Completions CSV path (required)")
	f.StringVarP(&judgeFlags.output, "output", "o", "", "Judged CSV path (required)")
	f.StringVar(&judgeFlags.templateDir, "template-dir", "", "Keyword template directory")
	f.IntVar(&judgeFlags.workers, "workers", 0, "Worker pool size (0 = GOMAXPROCS)")
	judgeCmd.MarkFlagRequired("input")
	judgeCmd.MarkFlagRequired("output")
}

func runJudge(cmd *cobra.Command, _ []string) error {
	n, err := judge.Run(cmd.Context(), judge.Config{
		Input:       judgeFlags.input,
		Output:      judgeFlags.output,
		TemplateDir: judgeFlags.templateDir,
		Workers:     judgeFlags.workers,
	})
	if err != nil {
		return fmt.Errorf("judge: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "judged %d completions -> %s\n", n, judgeFlags.output)
	return nil
}
