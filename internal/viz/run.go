package viz

import (
	"context"
	"fmt"
	"strings"

	"gnosis/internal/analytics"
	"gnosis/internal/logging"
	"gnosis/internal/table"
)

// Chart kinds accepted by Run.
const (
	KindComparative = "comparative"
	KindStatistical = "statistical"
	KindRadar       = "radar"
)

// Config drives one visualization step.
type Config struct {
	Input   string   // CSV to plot
	Output  string   // HTML report path
	Kind    string   // comparative | statistical | radar
	Title   string   // report title; defaults to the kind
	GroupBy string   // category axis column
	Hue     string   // comparative series column, optional
	Value   string   // value column (comparative, statistical)
	Metrics []string // radar metric columns
	PNG     string   // optional PNG path, rendered via headless Chrome
}

func (c Config) validate() error {
	if c.Input == "" {
		return fmt.Errorf("missing config key: input")
	}
	if c.Output == "" {
		return fmt.Errorf("missing config key: output")
	}
	if c.Kind == "" {
		return fmt.Errorf("missing config key: kind")
	}
	if c.GroupBy == "" {
		return fmt.Errorf("missing config key: group_by")
	}
	return nil
}

// Run reads the input table, renders the configured chart kind into an HTML
// report, and optionally rasterizes it to PNG.
func Run(ctx context.Context, cfg Config) analytics.StepResult {
	log := logging.New("viz")

	fail := func(err error) analytics.StepResult {
		return analytics.StepResult{Error: err.Error()}
	}
	if err := cfg.validate(); err != nil {
		return fail(err)
	}
	data, err := table.ReadCSV(cfg.Input)
	if err != nil {
		return fail(fmt.Errorf("read input: %w", err))
	}

	title := cfg.Title
	if title == "" {
		title = strings.ToUpper(cfg.Kind[:1]) + cfg.Kind[1:] + " chart"
	}

	var svg string
	switch cfg.Kind {
	case KindComparative:
		svg, err = ComparativeBars(data, title, cfg.GroupBy, cfg.Hue, cfg.Value)
	case KindStatistical:
		svg, err = BoxPlots(data, title, cfg.GroupBy, cfg.Value)
	case KindRadar:
		svg, err = Radar(data, title, cfg.GroupBy, cfg.Metrics)
	default:
		err = fmt.Errorf("unknown chart kind %q (want %s, %s or %s)",
			cfg.Kind, KindComparative, KindStatistical, KindRadar)
	}
	if err != nil {
		return fail(err)
	}

	if err := WritePage(cfg.Output, title, []string{svg}); err != nil {
		return fail(fmt.Errorf("write report: %w", err))
	}
	artifacts := []string{cfg.Output}

	if cfg.PNG != "" {
		if err := SnapshotPNG(ctx, cfg.Output, cfg.PNG); err != nil {
			return fail(fmt.Errorf("png snapshot: %w", err))
		}
		artifacts = append(artifacts, cfg.PNG)
	}
	log.Info("rendered chart", "kind", cfg.Kind, "rows", data.Len(), "artifacts", artifacts)
	return analytics.StepResult{Success: true, Artifacts: artifacts, Rows: data.Len()}
}
