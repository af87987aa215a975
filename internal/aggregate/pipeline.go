package aggregate

import (
	"fmt"
	"sort"

	"gnosis/internal/table"
)

// Stage is one step of a multi-level pipeline. All fields except Name are
// optional. With GroupBy set, Metrics run through the aggregator; without
// it, each metric is applied per row and added as a new column.
type Stage struct {
	// Name identifies the stage's entry in the pipeline results.
	Name string
	// Filter keeps only rows for which it returns true.
	Filter func(table.Row) bool
	// Transform replaces the working table before metrics run.
	Transform func(*table.Table) (*table.Table, error)
	// Metrics maps output column names to metric definitions.
	Metrics map[string]Metric
	// GroupBy selects grouped aggregation instead of per-row application.
	GroupBy []string
	// OutputToNext feeds this stage's result to the following stages.
	// Stages that leave it false branch off the carried-forward table
	// without replacing it.
	OutputToNext bool
}

// RunPipeline executes stages in order against a copy of data. It returns
// the per-stage result tables (every stage contributes an entry, regardless
// of OutputToNext) and the final carried-forward table.
//
// A configuration error (unknown metric, missing group-by column, unnamed
// stage) aborts the run with no partial results.
func (a *Aggregator) RunPipeline(data *table.Table, stages []Stage) (map[string]*table.Table, *table.Table, error) {
	results := make(map[string]*table.Table, len(stages))
	current := data.Copy()

	for i, stage := range stages {
		if stage.Name == "" {
			return nil, nil, fmt.Errorf("stage %d: name is required", i)
		}

		working := current.Copy()

		if stage.Filter != nil {
			working = working.Filter(stage.Filter)
		}

		if stage.Transform != nil {
			var err error
			working, err = stage.Transform(working)
			if err != nil {
				return nil, nil, fmt.Errorf("stage %q: transform: %w", stage.Name, err)
			}
			if working == nil {
				return nil, nil, fmt.Errorf("stage %q: transform returned no table", stage.Name)
			}
		}

		if len(stage.Metrics) > 0 {
			var err error
			if len(stage.GroupBy) > 0 {
				working, err = a.Aggregate(working, stage.GroupBy, stage.Metrics)
			} else {
				err = a.applyRowMetrics(working, stage.Metrics)
			}
			if err != nil {
				return nil, nil, fmt.Errorf("stage %q: %w", stage.Name, err)
			}
		}

		results[stage.Name] = working
		if stage.OutputToNext {
			current = working
		}
	}
	return results, current, nil
}

// applyRowMetrics adds one column per metric, computed row by row. Named
// metrics reduce the row's numeric cells (count counts them); custom metrics
// receive a one-row sub-table.
func (a *Aggregator) applyRowMetrics(t *table.Table, metrics map[string]Metric) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := t.Columns()
	for _, name := range names {
		m := metrics[name]
		var fn ColumnFunc
		if m.IsNamed() {
			var err error
			fn, err = a.reg.Lookup(m.FuncName())
			if err != nil {
				return err
			}
		}

		vals := make([]table.Value, t.Len())
		for i := 0; i < t.Len(); i++ {
			row := t.Row(i)
			if m.IsNamed() {
				vals[i] = fn(rowNumerics(row, cols))
				continue
			}
			sub := table.New(cols...)
			sub.Append(row)
			v, err := m.fn(sub)
			if err != nil {
				return fmt.Errorf("metric %q row %d: %w", name, i, err)
			}
			vals[i] = v
		}
		if err := t.AddColumn(name, vals); err != nil {
			return err
		}
	}
	return nil
}

func rowNumerics(row table.Row, cols []string) []float64 {
	var vals []float64
	for _, c := range cols {
		if f, ok := table.AsFloat(row[c]); ok {
			vals = append(vals, f)
		}
	}
	return vals
}
