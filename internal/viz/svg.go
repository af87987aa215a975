// Package viz renders experiment comparison charts as standalone HTML with
// inline SVG, optionally rasterized to PNG through headless Chrome.
package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gnosis/internal/aggregate"
	"gnosis/internal/table"
)

const (
	chartWidth  = 720
	chartHeight = 420
	marginLeft  = 60
	marginRight = 140
	marginTop   = 40
	marginBot   = 60
)

// palette cycles across series.
var palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1"}

type svgBuilder struct {
	b strings.Builder
}

func newSVG(title string) *svgBuilder {
	s := &svgBuilder{}
	fmt.Fprintf(&s.b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		chartWidth, chartHeight, chartWidth, chartHeight)
	fmt.Fprintf(&s.b, `<text x="%d" y="24" font-size="16" font-weight="bold">%s</text>`,
		marginLeft, escape(title))
	return s
}

func (s *svgBuilder) rect(x, y, w, h float64, fill string) {
	fmt.Fprintf(&s.b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`, x, y, w, h, fill)
}

func (s *svgBuilder) line(x1, y1, x2, y2 float64, stroke string) {
	fmt.Fprintf(&s.b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`, x1, y1, x2, y2, stroke)
}

func (s *svgBuilder) text(x, y float64, size int, anchor, content string) {
	fmt.Fprintf(&s.b, `<text x="%.1f" y="%.1f" font-size="%d" text-anchor="%s">%s</text>`,
		x, y, size, anchor, escape(content))
}

func (s *svgBuilder) polygon(points []point, fill, stroke string) {
	var coords []string
	for _, p := range points {
		coords = append(coords, fmt.Sprintf("%.1f,%.1f", p.x, p.y))
	}
	fmt.Fprintf(&s.b, `<polygon points="%s" fill="%s" fill-opacity="0.25" stroke="%s" stroke-width="2"/>`,
		strings.Join(coords, " "), fill, stroke)
}

func (s *svgBuilder) legend(labels []string) {
	x := float64(chartWidth - marginRight + 16)
	for i, label := range labels {
		y := float64(marginTop + 20*i)
		s.rect(x, y, 12, 12, palette[i%len(palette)])
		s.text(x+18, y+10, 12, "start", label)
	}
}

func (s *svgBuilder) String() string {
	return s.b.String() + "</svg>"
}

type point struct{ x, y float64 }

func escape(v string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(v)
}

// yScale maps a value into panel coordinates given the data range.
func yScale(v, lo, hi float64) float64 {
	if hi == lo {
		hi = lo + 1
	}
	panel := float64(chartHeight - marginTop - marginBot)
	return float64(chartHeight-marginBot) - panel*(v-lo)/(hi-lo)
}

// ComparativeBars draws grouped bars of valueCol per groupCol cell, one bar
// series per hueCol cell. An empty hueCol yields a single series.
func ComparativeBars(data *table.Table, title, groupCol, hueCol, valueCol string) (string, error) {
	if err := needColumns(data, groupCol, valueCol); err != nil {
		return "", err
	}
	if hueCol != "" {
		if err := needColumns(data, hueCol); err != nil {
			return "", err
		}
	}

	groups, hues, cells := meanCells(data, groupCol, hueCol, valueCol)
	if len(groups) == 0 {
		return "", fmt.Errorf("no data to plot")
	}

	lo, hi := 0.0, math.Inf(-1)
	for _, byHue := range cells {
		for _, v := range byHue {
			if v > hi {
				hi = v
			}
			if v < lo {
				lo = v
			}
		}
	}

	s := newSVG(title)
	drawYAxis(s, lo, hi)

	panelW := float64(chartWidth - marginLeft - marginRight)
	slot := panelW / float64(len(groups))
	barW := slot * 0.8 / float64(len(hues))

	for gi, g := range groups {
		x0 := float64(marginLeft) + slot*float64(gi) + slot*0.1
		for hi2, h := range hues {
			v, ok := cells[g][h]
			if !ok {
				continue
			}
			y := yScale(v, lo, hi)
			base := yScale(0, lo, hi)
			top, height := y, base-y
			if height < 0 {
				top, height = base, -height
			}
			s.rect(x0+barW*float64(hi2), top, barW-2, height, palette[hi2%len(palette)])
		}
		s.text(x0+slot*0.4, float64(chartHeight-marginBot+20), 12, "middle", g)
	}
	if hueCol != "" {
		s.legend(hues)
	}
	return s.String(), nil
}

// BoxPlots draws one five-number-summary box of valueCol per groupCol cell.
func BoxPlots(data *table.Table, title, groupCol, valueCol string) (string, error) {
	if err := needColumns(data, groupCol, valueCol); err != nil {
		return "", err
	}

	groups, values := groupedValues(data, groupCol, valueCol)
	if len(groups) == 0 {
		return "", fmt.Errorf("no data to plot")
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vals := range values {
		for _, v := range vals {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	s := newSVG(title)
	drawYAxis(s, lo, hi)

	panelW := float64(chartWidth - marginLeft - marginRight)
	slot := panelW / float64(len(groups))

	for gi, g := range groups {
		vals := append([]float64(nil), values[g]...)
		sort.Float64s(vals)
		q1, med, q3 := quartiles(vals)
		cx := float64(marginLeft) + slot*float64(gi) + slot/2
		boxW := slot * 0.5

		yMin := yScale(vals[0], lo, hi)
		yMax := yScale(vals[len(vals)-1], lo, hi)
		yQ1 := yScale(q1, lo, hi)
		yQ3 := yScale(q3, lo, hi)
		yMed := yScale(med, lo, hi)

		s.line(cx, yMin, cx, yQ1, "#333")
		s.line(cx, yQ3, cx, yMax, "#333")
		s.rect(cx-boxW/2, yQ3, boxW, yQ1-yQ3, palette[gi%len(palette)])
		s.line(cx-boxW/2, yMed, cx+boxW/2, yMed, "#000")
		s.text(cx, float64(chartHeight-marginBot+20), 12, "middle", g)
	}
	return s.String(), nil
}

// Radar draws one polygon per groupCol cell across the named metric columns,
// each axis normalized to its own observed maximum.
func Radar(data *table.Table, title, groupCol string, metricCols []string) (string, error) {
	if err := needColumns(data, groupCol); err != nil {
		return "", err
	}
	if len(metricCols) < 3 {
		return "", fmt.Errorf("radar chart needs at least 3 metric columns, got %d", len(metricCols))
	}
	if err := needColumns(data, metricCols...); err != nil {
		return "", err
	}

	maxima := make([]float64, len(metricCols))
	for i, col := range metricCols {
		for _, v := range data.Floats(col) {
			if v > maxima[i] {
				maxima[i] = v
			}
		}
		if maxima[i] == 0 {
			maxima[i] = 1
		}
	}

	cx := float64(chartWidth-marginRight) / 2
	cy := float64(chartHeight)/2 + 10
	radius := math.Min(cx-float64(marginLeft), cy-float64(marginTop)) - 20

	s := newSVG(title)
	for i, col := range metricCols {
		angle := axisAngle(i, len(metricCols))
		x := cx + radius*math.Cos(angle)
		y := cy + radius*math.Sin(angle)
		s.line(cx, cy, x, y, "#ccc")
		s.text(cx+(radius+14)*math.Cos(angle), cy+(radius+14)*math.Sin(angle), 11, "middle", col)
	}

	var labels []string
	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		label := fmt.Sprint(row[groupCol])
		labels = append(labels, label)

		var pts []point
		for j, col := range metricCols {
			v, _ := table.AsFloat(row[col])
			frac := v / maxima[j]
			angle := axisAngle(j, len(metricCols))
			pts = append(pts, point{cx + radius*frac*math.Cos(angle), cy + radius*frac*math.Sin(angle)})
		}
		color := palette[i%len(palette)]
		s.polygon(pts, color, color)
	}
	s.legend(labels)
	return s.String(), nil
}

func axisAngle(i, n int) float64 {
	return -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
}

func drawYAxis(s *svgBuilder, lo, hi float64) {
	s.line(marginLeft, marginTop, marginLeft, float64(chartHeight-marginBot), "#333")
	s.line(marginLeft, float64(chartHeight-marginBot), float64(chartWidth-marginRight), float64(chartHeight-marginBot), "#333")
	for i := 0; i <= 4; i++ {
		v := lo + (hi-lo)*float64(i)/4
		y := yScale(v, lo, hi)
		s.line(marginLeft-4, y, marginLeft, y, "#333")
		s.text(marginLeft-8, y+4, 11, "end", tickLabel(v))
	}
}

func tickLabel(v float64) string {
	return fmt.Sprintf("%.3g", v)
}

func needColumns(data *table.Table, cols ...string) error {
	for _, c := range cols {
		if !data.HasColumn(c) {
			return fmt.Errorf("column %q not found in data", c)
		}
	}
	return nil
}

// meanCells averages valueCol per (group, hue) pair, labels in
// first-occurrence order. With no hue column a single "" hue is used.
func meanCells(data *table.Table, groupCol, hueCol, valueCol string) ([]string, []string, map[string]map[string]float64) {
	var groups, hues []string
	seenG := map[string]bool{}
	seenH := map[string]bool{}
	sums := map[string]map[string][]float64{}

	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		g := fmt.Sprint(row[groupCol])
		h := ""
		if hueCol != "" {
			h = fmt.Sprint(row[hueCol])
		}
		v, ok := table.AsFloat(row[valueCol])
		if !ok {
			continue
		}
		if !seenG[g] {
			seenG[g] = true
			groups = append(groups, g)
		}
		if !seenH[h] {
			seenH[h] = true
			hues = append(hues, h)
		}
		if sums[g] == nil {
			sums[g] = map[string][]float64{}
		}
		sums[g][h] = append(sums[g][h], v)
	}

	cells := map[string]map[string]float64{}
	for g, byHue := range sums {
		cells[g] = map[string]float64{}
		for h, vals := range byHue {
			cells[g][h] = aggregate.Mean(vals)
		}
	}
	return groups, hues, cells
}

func groupedValues(data *table.Table, groupCol, valueCol string) ([]string, map[string][]float64) {
	var groups []string
	seen := map[string]bool{}
	values := map[string][]float64{}
	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		g := fmt.Sprint(row[groupCol])
		v, ok := table.AsFloat(row[valueCol])
		if !ok {
			continue
		}
		if !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
		values[g] = append(values[g], v)
	}
	return groups, values
}

// quartiles expects vals sorted ascending.
func quartiles(vals []float64) (q1, med, q3 float64) {
	med = sortedQuantile(vals, 0.5)
	q1 = sortedQuantile(vals, 0.25)
	q3 = sortedQuantile(vals, 0.75)
	return
}

func sortedQuantile(vals []float64, q float64) float64 {
	if len(vals) == 1 {
		return vals[0]
	}
	pos := q * float64(len(vals)-1)
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	if i+1 >= len(vals) {
		return vals[len(vals)-1]
	}
	return vals[i]*(1-frac) + vals[i+1]*frac
}
