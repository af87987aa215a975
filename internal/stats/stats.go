// Package stats provides the statistical analysis metrics layered on top of
// the aggregation core: confidence intervals, effect sizes, hypothesis
// tests, variance decomposition, and inter-rater reliability. Metrics
// implement AnalysisMetric and are looked up through an instance-owned
// registry.
package stats

import (
	"fmt"
	"math"

	"gnosis/internal/aggregate"
)

// Interval is a symmetric confidence interval around a mean.
type Interval struct {
	Mean  float64
	Lower float64
	Upper float64
}

// ConfidenceInterval returns the normal-approximation interval for the mean
// of vals at the given confidence level (e.g. 0.95).
func ConfidenceInterval(vals []float64, level float64) (Interval, error) {
	if len(vals) == 0 {
		return Interval{}, fmt.Errorf("confidence interval: values cannot be empty")
	}
	if level <= 0 || level >= 1 {
		return Interval{}, fmt.Errorf("confidence interval: level %v outside (0, 1)", level)
	}
	mean := aggregate.Mean(vals)
	sem := aggregate.SEM(vals)
	z := normQuantile(1 - (1-level)/2)
	margin := z * sem
	return Interval{Mean: mean, Lower: mean - margin, Upper: mean + margin}, nil
}

// Effect holds the effect-size statistics for a pair of groups.
type Effect struct {
	CohenD  float64
	HedgesG float64
}

// EffectSize computes Cohen's d with a pooled sample standard deviation and
// Hedges' g with the small-sample bias correction.
func EffectSize(group1, group2 []float64) (Effect, error) {
	n1, n2 := len(group1), len(group2)
	if n1 < 2 || n2 < 2 {
		return Effect{}, fmt.Errorf("effect size: both groups need at least 2 observations")
	}
	v1 := sampleVar(group1)
	v2 := sampleVar(group2)
	pooled := math.Sqrt((float64(n1-1)*v1 + float64(n2-1)*v2) / float64(n1+n2-2))

	d := 0.0
	if pooled > 0 {
		d = (aggregate.Mean(group1) - aggregate.Mean(group2)) / pooled
	}
	correction := 1 - 3/float64(4*(n1+n2)-9)
	return Effect{CohenD: d, HedgesG: d * correction}, nil
}

// TestResult holds a Welch t-test outcome.
type TestResult struct {
	TStat       float64
	PValue      float64
	DF          float64
	Significant bool
}

// WelchTTest runs an unequal-variance two-sample t-test with the given
// significance threshold (e.g. 0.05).
func WelchTTest(group1, group2 []float64, alpha float64) (TestResult, error) {
	n1, n2 := len(group1), len(group2)
	if n1 < 2 || n2 < 2 {
		return TestResult{}, fmt.Errorf("t-test: both groups need at least 2 observations")
	}
	v1 := sampleVar(group1) / float64(n1)
	v2 := sampleVar(group2) / float64(n2)
	se := math.Sqrt(v1 + v2)
	if se == 0 {
		return TestResult{}, fmt.Errorf("t-test: zero variance in both groups")
	}
	t := (aggregate.Mean(group1) - aggregate.Mean(group2)) / se
	df := (v1 + v2) * (v1 + v2) / (v1*v1/float64(n1-1) + v2*v2/float64(n2-1))
	p := studentT2Tail(t, df)
	return TestResult{TStat: t, PValue: p, DF: df, Significant: p < alpha}, nil
}

func sampleVar(vals []float64) float64 {
	m := aggregate.Mean(vals)
	sum := 0.0
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(vals)-1)
}
