// Package aggregate is the workbench aggregation core: a registry of named
// reduction functions, a group-by aggregator, and a multi-stage pipeline
// runner. All operations are synchronous, in-memory, and leave their inputs
// untouched.
package aggregate

import (
	"fmt"
	"math"
	"sort"
)

// ColumnFunc reduces the non-nil numeric values of a group's value column to
// a single number. Functions receive only the values present; an empty slice
// means the column had no usable values in the group.
type ColumnFunc func(vals []float64) float64

// CountName is the registry entry computing a group's row count. It is
// special-cased by the aggregator: it counts rows (nils included) rather than
// reducing a value column.
const CountName = "count"

// Registry maps metric names to reduction functions. Each Aggregator owns
// one; there is no process-global registry. Register functions before
// running pipelines, not concurrently with them.
type Registry struct {
	fns map[string]ColumnFunc
}

// NewRegistry returns a registry preloaded with the built-in reductions:
// mean, median, std (population), min, max, count (row count), sum, var
// (population), and sem (standard error of the mean, sample std, NaN for
// groups smaller than 2).
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]ColumnFunc)}
	r.Register("mean", Mean)
	r.Register("median", Median)
	r.Register("std", StdDev)
	r.Register("min", Min)
	r.Register("max", Max)
	r.Register(CountName, func(vals []float64) float64 { return float64(len(vals)) })
	r.Register("sum", Sum)
	r.Register("var", Variance)
	r.Register("sem", SEM)
	return r
}

// Register adds or overwrites an entry.
func (r *Registry) Register(name string, fn ColumnFunc) {
	r.fns[name] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (ColumnFunc, error) {
	fn, ok := r.fns[name]
	if !ok {
		return nil, fmt.Errorf("unknown aggregation function: %q", name)
	}
	return fn, nil
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.fns))
	for name := range r.fns {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// --- Built-in reductions ---

// Mean returns the arithmetic mean, NaN for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Median returns the middle value (average of the two middles for even n),
// NaN for an empty slice.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// Variance returns the population variance (ddof=0), NaN for an empty slice.
func Variance(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	m := Mean(vals)
	sum := 0.0
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(vals))
}

// StdDev returns the population standard deviation (ddof=0).
func StdDev(vals []float64) float64 {
	return math.Sqrt(Variance(vals))
}

// SampleStdDev returns the sample standard deviation (ddof=1), NaN for n<2.
func SampleStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	m := Mean(vals)
	sum := 0.0
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// SEM returns the standard error of the mean (sample std over sqrt(n)).
// Undefined (NaN) for groups with fewer than 2 observations.
func SEM(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	return SampleStdDev(vals) / math.Sqrt(float64(len(vals)))
}

// Min returns the smallest value, NaN for an empty slice.
func Min(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value, NaN for an empty slice.
func Max(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Sum returns the total; 0 for an empty slice.
func Sum(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum
}
