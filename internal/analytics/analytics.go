// Package analytics runs the aggregation step over judged experiment data.
package analytics

import (
	"fmt"
	"strings"

	"gnosis/internal/aggregate"
	"gnosis/internal/logging"
	"gnosis/internal/table"
)

// StepResult is the orchestration contract every workbench step reports
// through the CLI and MCP surfaces.
type StepResult struct {
	Success   bool     `json:"success"`
	Artifacts []string `json:"artifacts"`
	Rows      int      `json:"rows"`
	Error     string   `json:"error,omitempty"`
}

func failure(err error) StepResult {
	return StepResult{Error: err.Error()}
}

// Config drives one analytics step.
type Config struct {
	Input   string   // judged CSV
	Output  string   // aggregated CSV
	GroupBy []string // aggregation keys
	Metrics []string // metric names; empty means detect rating columns
}

func (c Config) validate() error {
	if c.Input == "" {
		return fmt.Errorf("missing config key: input")
	}
	if c.Output == "" {
		return fmt.Errorf("missing config key: output")
	}
	if len(c.GroupBy) == 0 {
		return fmt.Errorf("missing config key: group_by")
	}
	return nil
}

// DetectRatingColumns returns the columns carrying ratings: names ending
// "_rating" or exactly "rating", case-insensitively.
func DetectRatingColumns(data *table.Table) []string {
	var out []string
	for _, col := range data.Columns() {
		lower := strings.ToLower(col)
		if lower == "rating" || strings.HasSuffix(lower, "_rating") {
			out = append(out, col)
		}
	}
	return out
}

// Run aggregates the input by the configured keys and writes the result.
// With no configured metrics it averages every detected rating column; a
// count column is always present.
func Run(cfg Config) StepResult {
	log := logging.New("analytics")

	if err := cfg.validate(); err != nil {
		return failure(err)
	}
	data, err := table.ReadCSV(cfg.Input)
	if err != nil {
		return failure(fmt.Errorf("read input: %w", err))
	}
	if data.Empty() {
		return failure(fmt.Errorf("input %s has no rows", cfg.Input))
	}

	metrics, err := buildMetrics(data, cfg.Metrics)
	if err != nil {
		return failure(err)
	}
	log.Info("aggregating", "rows", data.Len(), "group_by", cfg.GroupBy, "metrics", len(metrics))

	agg := aggregate.New()
	result, err := agg.Aggregate(data, cfg.GroupBy, metrics)
	if err != nil {
		return failure(err)
	}
	if err := table.WriteCSV(result, cfg.Output); err != nil {
		return failure(fmt.Errorf("write output: %w", err))
	}
	return StepResult{Success: true, Artifacts: []string{cfg.Output}, Rows: result.Len()}
}

// buildMetrics maps configured metric names to aggregation metrics.
// "avg_<col>" averages that column; "avg_rating" and "avg_judge_rating"
// resolve to whichever rating column the data carries. Bare names go through
// the aggregation registry.
func buildMetrics(data *table.Table, names []string) (map[string]aggregate.Metric, error) {
	metrics := map[string]aggregate.Metric{
		"count": aggregate.Named(aggregate.CountName),
	}

	if len(names) == 0 {
		rated := DetectRatingColumns(data)
		if len(rated) == 0 {
			return nil, fmt.Errorf("no rating columns detected and no metrics configured")
		}
		for _, col := range rated {
			metrics["avg_"+col] = aggregate.ColumnMean(col)
		}
		return metrics, nil
	}

	for _, name := range names {
		switch {
		case name == "count":
			// always present
		case name == "avg_rating" || name == "avg_judge_rating":
			col, err := resolveRatingColumn(data)
			if err != nil {
				return nil, err
			}
			metrics[name] = aggregate.ColumnMean(col)
		case strings.HasPrefix(name, "avg_"):
			col := strings.TrimPrefix(name, "avg_")
			if !data.HasColumn(col) {
				return nil, fmt.Errorf("metric %s: column %q not found in data", name, col)
			}
			metrics[name] = aggregate.ColumnMean(col)
		default:
			metrics[name] = aggregate.Named(name)
		}
	}
	return metrics, nil
}

func resolveRatingColumn(data *table.Table) (string, error) {
	rated := DetectRatingColumns(data)
	if len(rated) == 0 {
		return "", fmt.Errorf("no rating column found in data")
	}
	return rated[0], nil
}
