package stats

import (
	"fmt"
	"sort"

	"gnosis/internal/aggregate"
	"gnosis/internal/table"
)

// AnalysisMetric reduces a table to a set of named scalar results. Unlike
// the aggregation registry's column reductions, analysis metrics see the
// whole table and may combine several columns.
type AnalysisMetric interface {
	Name() string
	Calculate(data *table.Table) (map[string]float64, error)
}

// Registry maps analysis-metric names to configured instances. Each owner
// constructs its own registry; there is no global one.
type Registry struct {
	metrics map[string]AnalysisMetric
}

// NewRegistry returns an empty analysis-metric registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]AnalysisMetric)}
}

// Register adds or overwrites a metric under its own Name().
func (r *Registry) Register(m AnalysisMetric) {
	r.metrics[m.Name()] = m
}

// Lookup returns the metric registered under name.
func (r *Registry) Lookup(name string) (AnalysisMetric, error) {
	m, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("analysis metric %q is not registered", name)
	}
	return m, nil
}

// Names lists registered metrics, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// --- Variance explained ---

// VarianceExplained measures how much of a value column's variance a factor
// column accounts for: (total − mean within-group) / total, with sample
// variances. Single-observation groups are skipped in the within-group mean.
type VarianceExplained struct {
	FactorColumn string
	ValueColumn  string
}

func (m *VarianceExplained) Name() string { return "variance_explained" }

func (m *VarianceExplained) Calculate(data *table.Table) (map[string]float64, error) {
	if err := requireColumns(data, m.FactorColumn, m.ValueColumn); err != nil {
		return nil, err
	}
	all := data.Floats(m.ValueColumn)
	if len(all) < 2 {
		return nil, fmt.Errorf("variance explained: need at least 2 observations")
	}
	total := sampleVar(all)

	var within []float64
	for _, group := range groupValues(data, m.FactorColumn, m.ValueColumn) {
		if len(group) >= 2 {
			within = append(within, sampleVar(group))
		}
	}
	withinMean := aggregate.Mean(within)

	explained := 0.0
	if total > 0 {
		explained = (total - withinMean) / total
	}
	return map[string]float64{
		"variance_explained":    explained,
		"total_variance":        total,
		"within_group_variance": withinMean,
	}, nil
}

// --- Pairwise group effects ---

// GroupEffects computes effect sizes and Welch t-tests between every pair of
// groups in a column. Result keys are "<g1>_vs_<g2>_<stat>".
type GroupEffects struct {
	GroupColumn string
	ValueColumn string
	Alpha       float64 // significance threshold; 0 means 0.05
}

func (m *GroupEffects) Name() string { return "group_effects" }

func (m *GroupEffects) Calculate(data *table.Table) (map[string]float64, error) {
	if err := requireColumns(data, m.GroupColumn, m.ValueColumn); err != nil {
		return nil, err
	}
	alpha := m.Alpha
	if alpha == 0 {
		alpha = 0.05
	}

	groups := groupValues(data, m.GroupColumn, m.ValueColumn)
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]float64)
	for i, g1 := range names {
		for _, g2 := range names[i+1:] {
			eff, err := EffectSize(groups[g1], groups[g2])
			if err != nil {
				return nil, fmt.Errorf("groups %s vs %s: %w", g1, g2, err)
			}
			test, err := WelchTTest(groups[g1], groups[g2], alpha)
			if err != nil {
				return nil, fmt.Errorf("groups %s vs %s: %w", g1, g2, err)
			}
			prefix := g1 + "_vs_" + g2 + "_"
			out[prefix+"cohen_d"] = eff.CohenD
			out[prefix+"hedges_g"] = eff.HedgesG
			out[prefix+"t_statistic"] = test.TStat
			out[prefix+"p_value"] = test.PValue
			out[prefix+"significant"] = boolToFloat(test.Significant)
		}
	}
	return out, nil
}

// --- Inter-rater reliability ---

// Reliability computes intraclass correlation coefficients over an
// item×observer rating pivot. Missing cells are filled with the item's mean
// rating before the variance decomposition.
type Reliability struct {
	ItemColumn     string
	ObserverColumn string
	RatingColumn   string
}

func (m *Reliability) Name() string { return "reliability" }

func (m *Reliability) Calculate(data *table.Table) (map[string]float64, error) {
	if err := requireColumns(data, m.ItemColumn, m.ObserverColumn, m.RatingColumn); err != nil {
		return nil, err
	}

	items, observers, cells := pivot(data, m.ItemColumn, m.ObserverColumn, m.RatingColumn)
	nItems, nObs := len(items), len(observers)
	if nItems < 2 || nObs < 2 {
		return nil, fmt.Errorf("reliability: need at least 2 items and 2 observers")
	}

	// Fill missing cells with the item mean.
	matrix := make([][]float64, nItems)
	for i, item := range items {
		row := make([]float64, nObs)
		var present []float64
		for _, obs := range observers {
			if v, ok := cells[item][obs]; ok {
				present = append(present, v)
			}
		}
		if len(present) == 0 {
			return nil, fmt.Errorf("reliability: item %q has no ratings", item)
		}
		fill := aggregate.Mean(present)
		for j, obs := range observers {
			if v, ok := cells[item][obs]; ok {
				row[j] = v
			} else {
				row[j] = fill
			}
		}
		matrix[i] = row
	}

	grand := 0.0
	for _, row := range matrix {
		grand += aggregate.Sum(row)
	}
	grand /= float64(nItems * nObs)

	var itemsSS, obsSS, totalSS float64
	for _, row := range matrix {
		rm := aggregate.Mean(row)
		itemsSS += (rm - grand) * (rm - grand)
		for _, v := range row {
			totalSS += (v - grand) * (v - grand)
		}
	}
	itemsSS *= float64(nObs)
	for j := 0; j < nObs; j++ {
		col := make([]float64, nItems)
		for i := range matrix {
			col[i] = matrix[i][j]
		}
		cm := aggregate.Mean(col)
		obsSS += (cm - grand) * (cm - grand)
	}
	obsSS *= float64(nItems)

	msItems := itemsSS / float64(nItems-1)
	msObservers := obsSS / float64(nObs-1)
	residualSS := totalSS - itemsSS - obsSS
	dfResidual := float64((nItems - 1) * (nObs - 1))
	msResidual := residualSS / dfResidual

	k := float64(nObs)
	icc1 := (msItems - msResidual) / (msItems + (k-1)*msResidual)
	icc2 := (msItems - msResidual) / (msItems + (msObservers-msResidual)/float64(nItems) + (k-1)*msResidual)

	return map[string]float64{
		"icc1":         icc1,
		"icc2":         icc2,
		"icc3":         icc1,
		"icc1_k":       (msItems - msResidual) / msItems,
		"icc2_k":       (msItems - msResidual) / (msItems + (msObservers-msResidual)/float64(nItems)),
		"icc3_k":       (msItems - msResidual) / msItems,
		"ms_items":     msItems,
		"ms_observers": msObservers,
		"ms_residual":  msResidual,
		"n_items":      float64(nItems),
		"n_observers":  float64(nObs),
	}, nil
}

// --- helpers ---

func requireColumns(data *table.Table, cols ...string) error {
	for _, c := range cols {
		if !data.HasColumn(c) {
			return fmt.Errorf("column %q not found in data", c)
		}
	}
	return nil
}

// groupValues collects the numeric values of valueCol per distinct cell of
// keyCol (keys rendered as strings).
func groupValues(data *table.Table, keyCol, valueCol string) map[string][]float64 {
	out := make(map[string][]float64)
	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		key := fmt.Sprint(row[keyCol])
		if f, ok := table.AsFloat(row[valueCol]); ok {
			out[key] = append(out[key], f)
		}
	}
	return out
}

// pivot builds an item×observer cell map, with item and observer labels in
// first-occurrence order.
func pivot(data *table.Table, itemCol, obsCol, valCol string) ([]string, []string, map[string]map[string]float64) {
	var items, observers []string
	seenItem := make(map[string]bool)
	seenObs := make(map[string]bool)
	cells := make(map[string]map[string]float64)

	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		item := fmt.Sprint(row[itemCol])
		obs := fmt.Sprint(row[obsCol])
		v, ok := table.AsFloat(row[valCol])
		if !ok {
			continue
		}
		if !seenItem[item] {
			seenItem[item] = true
			items = append(items, item)
		}
		if !seenObs[obs] {
			seenObs[obs] = true
			observers = append(observers, obs)
		}
		if cells[item] == nil {
			cells[item] = make(map[string]float64)
		}
		cells[item][obs] = v
	}
	return items, observers, cells
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
