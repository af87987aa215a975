package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gnosis/internal/viz"
)

var visualizeFlags struct {
	input   string
	output  string
	kind    string
	title   string
	groupBy string
	hue     string
	value   string
	metrics []string
	png     string
}

var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Render a chart of a CSV into an HTML report",
	Long: `Visualize renders the input CSV as an HTML report with an inline SVG
chart. Kinds: comparative (grouped bars of --value by --group-by and --hue),
statistical (box plots of --value per --group-by), radar (one polygon per row
across --metrics columns). With --png the report is also rasterized through
headless Chrome.`,
	RunE: runVisualize,
}

func init() {
	f := visualizeCmd.Flags()
	f.StringVarP(&visualizeFlags.input, "input", "i", "", "CSV path to plot (required)")
	f.StringVarP(&visualizeFlags.output, "output", "o", "", "HTML report path (required)")
	f.StringVar(&visualizeFlags.kind, "kind", viz.KindComparative, "Chart kind (comparative, statistical, radar)")
	f.StringVar(&visualizeFlags.title, "title", "", "Report title")
	f.StringVar(&visualizeFlags.groupBy, "group-by", "", "Category axis column (required)")
	f.StringVar(&visualizeFlags.hue, "hue", "", "Series column for comparative charts")
	f.StringVar(&visualizeFlags.value, "value", "", "Value column")
	f.StringSliceVar(&visualizeFlags.metrics, "metrics", nil, "Metric columns for radar charts")
	f.StringVar(&visualizeFlags.png, "png", "", "Also write a PNG snapshot to this path")
	visualizeCmd.MarkFlagRequired("input")
	visualizeCmd.MarkFlagRequired("output")
	visualizeCmd.MarkFlagRequired("group-by")
}

func runVisualize(cmd *cobra.Command, _ []string) error {
	res := viz.Run(cmd.Context(), viz.Config{
		Input:   visualizeFlags.input,
		Output:  visualizeFlags.output,
		Kind:    visualizeFlags.kind,
		Title:   visualizeFlags.title,
		GroupBy: visualizeFlags.groupBy,
		Hue:     visualizeFlags.hue,
		Value:   visualizeFlags.value,
		Metrics: visualizeFlags.metrics,
		PNG:     visualizeFlags.png,
	})
	if !res.Success {
		return fmt.Errorf("visualize: %s", res.Error)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rendered %s chart -> %s\n",
		visualizeFlags.kind, strings.Join(res.Artifacts, ", "))
	return nil
}
