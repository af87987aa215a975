package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"gnosis/internal/config"
	"gnosis/internal/format"
	"gnosis/internal/stats"
	"gnosis/internal/table"
)

var statsFlags struct {
	input     string
	factor    string
	value     string
	item      string
	observer  string
	workbench string
	format    string
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run statistical analysis metrics over a judged CSV",
	Long: `Stats runs the enabled analysis metric categories over the input:
variance explained and pairwise group effects for --factor/--value, and
inter-rater reliability (ICC) when --item and --observer are given. The
workbench config's metrics section switches categories on and off.`,
	RunE: runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringVarP(&statsFlags.input, "input", "i", "", "Judged CSV path (required)")
	f.StringVar(&statsFlags.factor, "factor", "", "Grouping column (required)")
	f.StringVar(&statsFlags.value, "value", "", "Value column (required)")
	f.StringVar(&statsFlags.item, "item", "", "Item column for reliability")
	f.StringVar(&statsFlags.observer, "observer", "", "Observer column for reliability")
	f.StringVar(&statsFlags.workbench, "workbench", "", "Workbench config gating metric categories")
	f.StringVar(&statsFlags.format, "format", "ascii", "Table format (ascii, markdown)")
	statsCmd.MarkFlagRequired("input")
	statsCmd.MarkFlagRequired("factor")
	statsCmd.MarkFlagRequired("value")
}

func runStats(cmd *cobra.Command, _ []string) error {
	enabled := func(string) bool { return true }
	if statsFlags.workbench != "" {
		wb, err := config.Load(statsFlags.workbench)
		if err != nil {
			return err
		}
		enabled = wb.MetricEnabled
	}

	data, err := table.ReadCSV(statsFlags.input)
	if err != nil {
		return err
	}

	reg := stats.NewRegistry()
	if enabled("aggregate") {
		reg.Register(&stats.VarianceExplained{FactorColumn: statsFlags.factor, ValueColumn: statsFlags.value})
	}
	if enabled("statistical") {
		reg.Register(&stats.GroupEffects{GroupColumn: statsFlags.factor, ValueColumn: statsFlags.value})
	}
	if enabled("reliability") && statsFlags.item != "" && statsFlags.observer != "" {
		reg.Register(&stats.Reliability{
			ItemColumn:     statsFlags.item,
			ObserverColumn: statsFlags.observer,
			RatingColumn:   statsFlags.value,
		})
	}

	names := reg.Names()
	if len(names) == 0 {
		return fmt.Errorf("no analysis metrics enabled")
	}

	tb := format.NewTable(format.ParseMode(statsFlags.format))
	tb.Header("Metric", "Result", "Value")
	for _, name := range names {
		m, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		results, err := m.Calculate(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		keys := make([]string, 0, len(results))
		for k := range results {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tb.Row(name, k, fmt.Sprintf("%.4g", results[k]))
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}
