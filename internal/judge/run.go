package judge

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gnosis/internal/logging"
	"gnosis/internal/table"
)

// completionColumns are checked in order when locating the text to judge.
var completionColumns = []string{"completion", "response", "answer", "raw_model_output"}

// Config drives one judge step.
type Config struct {
	Input       string // completions CSV
	Output      string // judged CSV
	TemplateDir string // keyword template directory, may be empty
	Workers     int    // 0 means GOMAXPROCS
}

func (c Config) validate() error {
	if c.Input == "" {
		return fmt.Errorf("missing config key: input")
	}
	if c.Output == "" {
		return fmt.Errorf("missing config key: output")
	}
	return nil
}

// Run judges every row of the input CSV and writes the result with
// judge_rating and judge_justification columns appended. It returns the
// number of judged rows.
func Run(ctx context.Context, cfg Config) (int, error) {
	log := logging.New("judge")

	if err := cfg.validate(); err != nil {
		return 0, err
	}
	kw, err := LoadKeywords(cfg.TemplateDir)
	if err != nil {
		return 0, fmt.Errorf("load keywords: %w", err)
	}

	data, err := table.ReadCSV(cfg.Input)
	if err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}
	col, err := findCompletionColumn(data)
	if err != nil {
		return 0, err
	}
	log.Info("judging completions", "rows", data.Len(), "column", col,
		"positive_keywords", len(kw.Positive), "negative_keywords", len(kw.Negative))

	verdicts, err := scoreAll(ctx, data, col, kw, cfg.Workers)
	if err != nil {
		return 0, err
	}

	ratings := make([]table.Value, data.Len())
	justifications := make([]table.Value, data.Len())
	for i, v := range verdicts {
		ratings[i] = float64(v.Rating)
		justifications[i] = v.Justification.JSON()
	}
	if err := data.AddColumn("judge_rating", ratings); err != nil {
		return 0, err
	}
	if err := data.AddColumn("judge_justification", justifications); err != nil {
		return 0, err
	}

	if err := table.WriteCSV(data, cfg.Output); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}
	return data.Len(), nil
}

// scoreAll judges rows on a bounded worker pool. Rows are independent so
// results land by index.
func scoreAll(ctx context.Context, data *table.Table, col string, kw Keywords, workers int) ([]Verdict, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	verdicts := make([]Verdict, data.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < data.Len(); i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, _ := data.At(i, col).(string)
			verdicts[i] = Score(text, kw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

func findCompletionColumn(data *table.Table) (string, error) {
	for _, name := range completionColumns {
		if data.HasColumn(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no completion column found (expected one of %v)", completionColumns)
}
