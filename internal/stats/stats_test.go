package stats

import (
	"math"
	"testing"

	"gnosis/internal/table"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestConfidenceInterval(t *testing.T) {
	vals := []float64{4, 5, 6, 5, 4, 6, 5, 5}
	ci, err := ConfidenceInterval(vals, 0.95)
	if err != nil {
		t.Fatalf("ConfidenceInterval: %v", err)
	}
	if !almostEqual(ci.Mean, 5, 1e-12) {
		t.Errorf("mean = %v, want 5", ci.Mean)
	}
	if ci.Lower >= ci.Mean || ci.Upper <= ci.Mean {
		t.Errorf("interval [%v, %v] does not bracket mean %v", ci.Lower, ci.Upper, ci.Mean)
	}
	if !almostEqual(ci.Mean-ci.Lower, ci.Upper-ci.Mean, 1e-9) {
		t.Errorf("interval not symmetric around mean: [%v, %v]", ci.Lower, ci.Upper)
	}

	wide, err := ConfidenceInterval(vals, 0.99)
	if err != nil {
		t.Fatalf("ConfidenceInterval 0.99: %v", err)
	}
	if wide.Upper-wide.Lower <= ci.Upper-ci.Lower {
		t.Errorf("99%% interval should be wider than 95%%")
	}
}

func TestConfidenceIntervalErrors(t *testing.T) {
	if _, err := ConfidenceInterval(nil, 0.95); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := ConfidenceInterval([]float64{1, 2}, 1.5); err == nil {
		t.Error("expected error for level outside (0,1)")
	}
}

func TestEffectSize(t *testing.T) {
	// Two unit-variance groups one pooled standard deviation apart.
	g1 := []float64{9, 10, 11}
	g2 := []float64{10, 11, 12}
	eff, err := EffectSize(g1, g2)
	if err != nil {
		t.Fatalf("EffectSize: %v", err)
	}
	if !almostEqual(eff.CohenD, -1, 1e-12) {
		t.Errorf("Cohen's d = %v, want -1", eff.CohenD)
	}
	// Hedges' correction for n1+n2=6 is 1 - 3/15 = 0.8.
	if !almostEqual(eff.HedgesG, -0.8, 1e-12) {
		t.Errorf("Hedges' g = %v, want -0.8", eff.HedgesG)
	}

	if _, err := EffectSize([]float64{1}, g2); err == nil {
		t.Error("expected error for group with fewer than 2 observations")
	}
}

func TestWelchTTestIdenticalGroups(t *testing.T) {
	g := []float64{3, 4, 5, 6, 7}
	res, err := WelchTTest(g, g, 0.05)
	if err != nil {
		t.Fatalf("WelchTTest: %v", err)
	}
	if !almostEqual(res.TStat, 0, 1e-12) {
		t.Errorf("t = %v, want 0", res.TStat)
	}
	if !almostEqual(res.PValue, 1, 1e-9) {
		t.Errorf("p = %v, want 1", res.PValue)
	}
	if res.Significant {
		t.Error("identical groups should not be significant")
	}
}

func TestWelchTTestSeparatedGroups(t *testing.T) {
	g1 := []float64{1, 1.1, 0.9, 1.05, 0.95, 1.02, 0.98, 1.01}
	g2 := []float64{5, 5.1, 4.9, 5.05, 4.95, 5.02, 4.98, 5.01}
	res, err := WelchTTest(g1, g2, 0.05)
	if err != nil {
		t.Fatalf("WelchTTest: %v", err)
	}
	if res.PValue > 0.001 {
		t.Errorf("p = %v, want far below 0.001", res.PValue)
	}
	if !res.Significant {
		t.Error("clearly separated groups should be significant")
	}
	if res.TStat >= 0 {
		t.Errorf("t = %v, want negative (group1 mean is lower)", res.TStat)
	}
}

func TestStudentT2Tail(t *testing.T) {
	// Against standard t-table values.
	cases := []struct {
		t, df, want, tol float64
	}{
		{2.776, 4, 0.05, 1e-3},
		{1.96, 1e6, 0.05, 1e-3},
		{0, 10, 1, 1e-12},
	}
	for _, c := range cases {
		got := studentT2Tail(c.t, c.df)
		if !almostEqual(got, c.want, c.tol) {
			t.Errorf("studentT2Tail(%v, %v) = %v, want %v", c.t, c.df, got, c.want)
		}
	}
}

func TestNormQuantile(t *testing.T) {
	cases := []struct {
		p, want float64
	}{
		{0.5, 0},
		{0.975, 1.959964},
		{0.995, 2.575829},
		{0.025, -1.959964},
	}
	for _, c := range cases {
		got := normQuantile(c.p)
		if !almostEqual(got, c.want, 1e-5) {
			t.Errorf("normQuantile(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func ratingTable() *table.Table {
	tbl := table.New("model", "score")
	// Model a clusters around 2, model b around 8.
	for _, v := range []float64{1.8, 2.0, 2.2, 1.9, 2.1} {
		tbl.Append(table.Row{"model": "a", "score": v})
	}
	for _, v := range []float64{7.8, 8.0, 8.2, 7.9, 8.1} {
		tbl.Append(table.Row{"model": "b", "score": v})
	}
	return tbl
}

func TestVarianceExplained(t *testing.T) {
	m := &VarianceExplained{FactorColumn: "model", ValueColumn: "score"}
	got, err := m.Calculate(ratingTable())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got["variance_explained"] < 0.95 {
		t.Errorf("variance_explained = %v, want > 0.95 for well-separated groups", got["variance_explained"])
	}
	if got["total_variance"] <= got["within_group_variance"] {
		t.Errorf("total variance %v should exceed within-group variance %v",
			got["total_variance"], got["within_group_variance"])
	}
}

func TestVarianceExplainedMissingColumn(t *testing.T) {
	m := &VarianceExplained{FactorColumn: "nope", ValueColumn: "score"}
	if _, err := m.Calculate(ratingTable()); err == nil {
		t.Error("expected error for missing factor column")
	}
}

func TestGroupEffects(t *testing.T) {
	m := &GroupEffects{GroupColumn: "model", ValueColumn: "score"}
	got, err := m.Calculate(ratingTable())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got["a_vs_b_significant"] != 1 {
		t.Error("a vs b should be significant")
	}
	if got["a_vs_b_cohen_d"] >= 0 {
		t.Errorf("cohen_d = %v, want negative (a below b)", got["a_vs_b_cohen_d"])
	}
	if got["a_vs_b_p_value"] > 0.001 {
		t.Errorf("p = %v, want far below 0.001", got["a_vs_b_p_value"])
	}
}

func TestReliability(t *testing.T) {
	tbl := table.New("item", "rater", "rating")
	// Two raters in near-perfect agreement across four items.
	ratings := map[string][2]float64{
		"i1": {1, 1},
		"i2": {3, 3},
		"i3": {5, 5},
		"i4": {2, 3},
	}
	for item, rs := range ratings {
		tbl.Append(table.Row{"item": item, "rater": "r1", "rating": rs[0]})
		tbl.Append(table.Row{"item": item, "rater": "r2", "rating": rs[1]})
	}

	m := &Reliability{ItemColumn: "item", ObserverColumn: "rater", RatingColumn: "rating"}
	got, err := m.Calculate(tbl)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got["icc1"] < 0.8 {
		t.Errorf("icc1 = %v, want high agreement", got["icc1"])
	}
	if got["icc1_k"] < got["icc1"] {
		t.Errorf("average-rater ICC %v should not be below single-rater ICC %v",
			got["icc1_k"], got["icc1"])
	}
	if got["n_items"] != 4 || got["n_observers"] != 2 {
		t.Errorf("pivot shape = %vx%v, want 4x2", got["n_items"], got["n_observers"])
	}
}

func TestReliabilityFillsMissingCells(t *testing.T) {
	tbl := table.New("item", "rater", "rating")
	tbl.Append(table.Row{"item": "i1", "rater": "r1", "rating": 2.0})
	tbl.Append(table.Row{"item": "i1", "rater": "r2", "rating": 4.0})
	tbl.Append(table.Row{"item": "i2", "rater": "r1", "rating": 5.0})
	// i2 has no r2 rating and should be filled with its item mean.
	tbl.Append(table.Row{"item": "i3", "rater": "r1", "rating": 1.0})
	tbl.Append(table.Row{"item": "i3", "rater": "r2", "rating": 2.0})

	m := &Reliability{ItemColumn: "item", ObserverColumn: "rater", RatingColumn: "rating"}
	got, err := m.Calculate(tbl)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got["n_items"] != 3 {
		t.Errorf("n_items = %v, want 3", got["n_items"])
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&VarianceExplained{FactorColumn: "model", ValueColumn: "score"})
	r.Register(&GroupEffects{GroupColumn: "model", ValueColumn: "score"})

	m, err := r.Lookup("variance_explained")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if m.Name() != "variance_explained" {
		t.Errorf("Name() = %q", m.Name())
	}
	if _, err := r.Lookup("bogus"); err == nil {
		t.Error("expected error for unregistered metric")
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "group_effects" {
		t.Errorf("Names() = %v", names)
	}
}
