package aggregate

import (
	"gnosis/internal/table"
)

// TableFunc computes a scalar from a group's full sub-table. Returning a nil
// Value records a missing result rather than failing the aggregation.
type TableFunc func(group *table.Table) (table.Value, error)

// Metric is a tagged variant: either the name of a registered reduction
// (resolved against the aggregator's registry at run time) or a custom
// function applied to the whole group sub-table. The zero Metric is invalid.
type Metric struct {
	name string
	fn   TableFunc
}

// Named refers to a function in the registry, e.g. Named("mean").
func Named(name string) Metric { return Metric{name: name} }

// Custom wraps a caller-supplied function receiving the group sub-table.
func Custom(fn TableFunc) Metric { return Metric{fn: fn} }

// IsNamed reports whether the metric is a registry reference.
func (m Metric) IsNamed() bool { return m.fn == nil }

// FuncName returns the registry name for a named metric, "" for custom ones.
func (m Metric) FuncName() string { return m.name }

// ColumnMean returns a custom metric averaging the named column's non-nil
// numeric values within each group. If the column is absent the metric
// yields a nil cell, mirroring the tolerant behavior expected by the
// config-driven analytics step.
func ColumnMean(col string) Metric {
	return Custom(func(g *table.Table) (table.Value, error) {
		if !g.HasColumn(col) {
			return nil, nil
		}
		vals := g.Floats(col)
		if len(vals) == 0 {
			return nil, nil
		}
		return Mean(vals), nil
	})
}
