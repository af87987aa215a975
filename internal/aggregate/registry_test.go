package aggregate

import (
	"math"
	"sort"
	"testing"
)

func TestNewRegistry_Builtins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"mean", "median", "std", "min", "max", "count", "sum", "var", "sem"} {
		if _, err := r.Lookup(name); err != nil {
			t.Errorf("builtin %q missing: %v", name, err)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Lookup("p99"); err == nil {
		t.Error("expected error for unregistered name")
	}
}

func TestRegister_CustomPercentile(t *testing.T) {
	r := NewRegistry()
	p75 := func(vals []float64) float64 {
		s := make([]float64, len(vals))
		copy(s, vals)
		sort.Float64s(s)
		return s[(len(s)*3)/4]
	}
	r.Register("p75", p75)

	fn, err := r.Lookup("p75")
	if err != nil {
		t.Fatalf("Lookup after Register: %v", err)
	}
	if got := fn([]float64{1, 2, 3, 4}); got != 4 {
		t.Errorf("p75 = %v, want 4", got)
	}
}

func TestReductions(t *testing.T) {
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	tests := []struct {
		name string
		fn   ColumnFunc
		want float64
	}{
		{"mean", Mean, 5},
		{"median", Median, 4.5},
		{"std population", StdDev, 2},
		{"var population", Variance, 4},
		{"min", Min, 2},
		{"max", Max, 9},
		{"sum", Sum, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(vals); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestReductions_Empty(t *testing.T) {
	for _, tt := range []struct {
		name string
		fn   ColumnFunc
	}{
		{"mean", Mean}, {"median", Median}, {"std", StdDev},
		{"var", Variance}, {"min", Min}, {"max", Max}, {"sem", SEM},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(nil); !math.IsNaN(got) {
				t.Errorf("%s(empty) = %v, want NaN", tt.name, got)
			}
		})
	}
	if got := Sum(nil); got != 0 {
		t.Errorf("Sum(empty) = %v, want 0", got)
	}
}

func TestSEM(t *testing.T) {
	// Fewer than 2 observations is undefined.
	if got := SEM([]float64{3.0}); !math.IsNaN(got) {
		t.Errorf("SEM of single value = %v, want NaN", got)
	}
	// Sample std of {1,3} is sqrt(2); SEM = sqrt(2)/sqrt(2) = 1.
	if got := SEM([]float64{1, 3}); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("SEM({1,3}) = %v, want 1", got)
	}
}

func TestMedian_OddCount(t *testing.T) {
	if got := Median([]float64{9, 1, 5}); got != 5 {
		t.Errorf("Median = %v, want 5", got)
	}
}
