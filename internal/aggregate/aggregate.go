package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"gnosis/internal/table"
)

// ScoreColumn is preferred as the value column for named reductions when it
// exists and is numeric.
const ScoreColumn = "score"

// Aggregator groups tables by key columns and computes named metrics per
// group. Each instance owns its registry; callers extend it via Registry().
type Aggregator struct {
	reg *Registry
}

// New returns an aggregator with the built-in function registry.
func New() *Aggregator {
	return &Aggregator{reg: NewRegistry()}
}

// Registry exposes the instance's function registry for caller extensions.
func (a *Aggregator) Registry() *Registry { return a.reg }

// Aggregate partitions data by exact equality across the groupBy columns and
// computes each metric per group.
//
// Output shape: one row per distinct key combination; columns are the
// groupBy columns in the caller's order followed by the metric output names
// in ascending order. Groups appear in order of first occurrence in data.
//
// Named metrics other than "count" reduce a value column: "score" if numeric,
// else the first numeric column in column order. "count" is the group's row
// count, nils included. Custom metrics receive the whole group sub-table.
//
// An empty input yields an empty table with the full output column set.
// Unknown metric names, missing groupBy columns, and a named reduction with
// no numeric column available are configuration errors.
func (a *Aggregator) Aggregate(data *table.Table, groupBy []string, metrics map[string]Metric) (*table.Table, error) {
	if len(groupBy) == 0 {
		return nil, fmt.Errorf("at least one group-by column is required")
	}

	metricNames := make([]string, 0, len(metrics))
	for name := range metrics {
		metricNames = append(metricNames, name)
	}
	sort.Strings(metricNames)

	out := table.New(append(append([]string{}, groupBy...), metricNames...)...)
	if data.Empty() {
		return out, nil
	}

	for _, col := range groupBy {
		if !data.HasColumn(col) {
			return nil, fmt.Errorf("group-by column %q not found in data", col)
		}
	}

	// Resolve named metrics up front so a bad configuration fails before any
	// grouping work.
	fns := make(map[string]ColumnFunc, len(metrics))
	needValue := false
	for _, name := range metricNames {
		m := metrics[name]
		if !m.IsNamed() {
			continue
		}
		fn, err := a.reg.Lookup(m.FuncName())
		if err != nil {
			return nil, err
		}
		fns[name] = fn
		if m.FuncName() != CountName {
			needValue = true
		}
	}

	valueCol := ""
	if needValue {
		var err error
		valueCol, err = pickValueColumn(data)
		if err != nil {
			return nil, err
		}
	}

	keys, groups := partition(data, groupBy)

	for _, key := range keys {
		sub := groups[key]
		row := make(table.Row, len(groupBy)+len(metricNames))
		first := sub.Row(0)
		for _, col := range groupBy {
			row[col] = first[col]
		}
		for _, name := range metricNames {
			m := metrics[name]
			switch {
			case m.IsNamed() && m.FuncName() == CountName:
				row[name] = float64(sub.Len())
			case m.IsNamed():
				row[name] = fns[name](sub.Floats(valueCol))
			default:
				v, err := m.fn(sub)
				if err != nil {
					return nil, fmt.Errorf("metric %q: %w", name, err)
				}
				row[name] = v
			}
		}
		out.Append(row)
	}
	return out, nil
}

// MeanByColumns is a convenience alias over Aggregate: it averages each of
// the given columns per group, naming the outputs "<col>_mean". The grouping
// semantics are identical to the canonical path.
func (a *Aggregator) MeanByColumns(data *table.Table, cols []string, groupBy []string) (*table.Table, error) {
	metrics := make(map[string]Metric, len(cols))
	for _, c := range cols {
		metrics[c+"_mean"] = ColumnMean(c)
	}
	return a.Aggregate(data, groupBy, metrics)
}

// pickValueColumn selects the column named reductions apply to.
func pickValueColumn(data *table.Table) (string, error) {
	numeric := data.NumericColumns()
	if len(numeric) == 0 {
		return "", fmt.Errorf("no numeric columns found for aggregation")
	}
	for _, c := range numeric {
		if c == ScoreColumn {
			return c, nil
		}
	}
	return numeric[0], nil
}

// partition splits data into per-key sub-tables, keys in first-occurrence
// order. Keys encode cell type and value so 7.0 and "7" land in different
// groups.
func partition(data *table.Table, groupBy []string) ([]string, map[string]*table.Table) {
	var keys []string
	groups := make(map[string]*table.Table)
	cols := data.Columns()
	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		key := groupKey(row, groupBy)
		sub, ok := groups[key]
		if !ok {
			sub = table.New(cols...)
			groups[key] = sub
			keys = append(keys, key)
		}
		sub.Append(row)
	}
	return keys, groups
}

func groupKey(row table.Row, groupBy []string) string {
	var b strings.Builder
	for _, col := range groupBy {
		fmt.Fprintf(&b, "%T=%v\x1f", row[col], row[col])
	}
	return b.String()
}
