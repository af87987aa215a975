package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gnosis/internal/analytics"
	"gnosis/internal/format"
	"gnosis/internal/table"
)

var analyzeFlags struct {
	input   string
	output  string
	groupBy []string
	metrics []string
	format  string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Aggregate a judged CSV by group keys",
	Long: `Analyze aggregates a judged CSV by the given group-by columns. Without
--metrics it averages every detected rating column; a count column is always
included. Metric names go through the aggregation registry, "avg_<col>"
averages that column.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFlags.input, "input", "i", "", "Judged CSV path (required)")
	f.StringVarP(&analyzeFlags.output, "output", "o", "", "Aggregated CSV path (required)")
	f.StringSliceVar(&analyzeFlags.groupBy, "group-by", nil, "Group-by columns (required)")
	f.StringSliceVar(&analyzeFlags.metrics, "metrics", nil, "Metric names; empty detects rating columns")
	f.StringVar(&analyzeFlags.format, "format", "ascii", "Result table format (ascii, markdown)")
	analyzeCmd.MarkFlagRequired("input")
	analyzeCmd.MarkFlagRequired("output")
	analyzeCmd.MarkFlagRequired("group-by")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	res := analytics.Run(analytics.Config{
		Input:   analyzeFlags.input,
		Output:  analyzeFlags.output,
		GroupBy: analyzeFlags.groupBy,
		Metrics: analyzeFlags.metrics,
	})
	if !res.Success {
		return fmt.Errorf("analyze: %s", res.Error)
	}

	result, err := table.ReadCSV(analyzeFlags.output)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.RenderTable(result, format.ParseMode(analyzeFlags.format)))
	fmt.Fprintf(cmd.OutOrStdout(), "%d groups -> %s\n", res.Rows, analyzeFlags.output)
	return nil
}
