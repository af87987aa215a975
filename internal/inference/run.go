package inference

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gnosis/internal/logging"
	"gnosis/internal/table"
)

// Config drives one inference step.
type Config struct {
	Input        string // prompts CSV with a "prompt" column
	Output       string // completions CSV
	DefaultModel string // used when a row names no model
	Workers      int    // 0 means GOMAXPROCS
}

func (c Config) validate() error {
	if c.Input == "" {
		return fmt.Errorf("missing config key: input")
	}
	if c.Output == "" {
		return fmt.Errorf("missing config key: output")
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("missing config key: model")
	}
	return nil
}

// Run generates a completion per prompt row and writes the table with
// completion and completion_tokens columns appended. It returns the number
// of generated completions.
func Run(ctx context.Context, cfg Config, client ModelClient) (int, error) {
	log := logging.New("inference")

	if err := cfg.validate(); err != nil {
		return 0, err
	}
	data, err := table.ReadCSV(cfg.Input)
	if err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}
	if !data.HasColumn("prompt") {
		return 0, fmt.Errorf("input has no prompt column")
	}
	log.Info("generating completions", "rows", data.Len(), "default_model", cfg.DefaultModel)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	completions := make([]table.Value, data.Len())
	tokens := make([]table.Value, data.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < data.Len(); i++ {
		g.Go(func() error {
			row := data.Row(i)
			prompt, _ := row["prompt"].(string)
			model := resolveModel(row, cfg.DefaultModel)
			resp, err := client.Generate(ctx, model, prompt)
			if err != nil {
				return fmt.Errorf("row %d (model %s): %w", i, model, err)
			}
			completions[i] = resp.Text
			tokens[i] = float64(resp.Tokens)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := data.AddColumn("completion", completions); err != nil {
		return 0, err
	}
	if err := data.AddColumn("completion_tokens", tokens); err != nil {
		return 0, err
	}
	if err := table.WriteCSV(data, cfg.Output); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}
	return data.Len(), nil
}

// resolveModel prefers a per-row model_id, then model, then the default.
func resolveModel(row table.Row, def string) string {
	if m, ok := row["model_id"].(string); ok && m != "" {
		return m
	}
	if m, ok := row["model"].(string); ok && m != "" {
		return m
	}
	return def
}
