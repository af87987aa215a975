package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gnosis/internal/tracker"
)

func TestHandleRunAnalytics(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "judged.csv")
	csv := "experiment_id,judge_rating\nexp1,4\nexp1,2\nexp2,5\n"
	if err := os.WriteFile(input, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "agg.csv")

	s := NewServer(nil)
	_, res, err := s.handleRunAnalytics(context.Background(), nil, runAnalyticsInput{
		Input:   input,
		Output:  output,
		GroupBy: []string{"experiment_id"},
	})
	if err != nil {
		t.Fatalf("handleRunAnalytics: %v", err)
	}
	if !res.Success {
		t.Fatalf("step failed: %s", res.Error)
	}
	if res.Rows != 2 {
		t.Errorf("rows = %d, want 2", res.Rows)
	}
	if _, statErr := os.Stat(output); statErr != nil {
		t.Errorf("artifact not written: %v", statErr)
	}
}

func TestHandleRunAnalyticsFailureIsToolOutput(t *testing.T) {
	s := NewServer(nil)
	_, res, err := s.handleRunAnalytics(context.Background(), nil, runAnalyticsInput{})
	if err != nil {
		t.Fatalf("step failures should be reported in the result, got protocol error %v", err)
	}
	if res.Success || res.Error == "" {
		t.Errorf("result = %+v, want failure with error message", res)
	}
}

func TestHandleRunJudge(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "completions.csv")
	if err := os.WriteFile(input, []byte("id,response\n1,fine answer here with several plain words\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "judged.csv")

	s := NewServer(nil)
	_, res, err := s.handleRunJudge(context.Background(), nil, runJudgeInput{Input: input, Output: output})
	if err != nil {
		t.Fatalf("handleRunJudge: %v", err)
	}
	if !res.Success || res.Rows != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestHandleRunVisualizationUnknownKind(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "agg.csv")
	if err := os.WriteFile(input, []byte("g,v\na,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewServer(nil)
	_, res, err := s.handleRunVisualization(context.Background(), nil, runVisualizationInput{
		Input: input, Output: filepath.Join(dir, "r.html"), Kind: "pie", GroupBy: "g",
	})
	if err != nil {
		t.Fatalf("handleRunVisualization: %v", err)
	}
	if res.Success || !strings.Contains(res.Error, "unknown chart kind") {
		t.Errorf("result = %+v", res)
	}
}

func TestHandleListExperiments(t *testing.T) {
	store, err := tracker.NewFileStore(filepath.Join(t.TempDir(), "runs"))
	if err != nil {
		t.Fatal(err)
	}
	first, _ := tracker.NewRun("baseline", map[string]any{"m": "llama3"}, []string{"nightly"})
	second, _ := tracker.NewRun("candidate", map[string]any{"m": "phi"}, nil)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	for _, r := range []tracker.Run{first, second} {
		if err := store.Save(r); err != nil {
			t.Fatal(err)
		}
	}

	s := NewServer(store)
	_, out, err := s.handleListExperiments(context.Background(), nil, listExperimentsInput{})
	if err != nil {
		t.Fatalf("handleListExperiments: %v", err)
	}
	if out.Total != 2 {
		t.Errorf("total = %d, want 2", out.Total)
	}

	_, tagged, err := s.handleListExperiments(context.Background(), nil, listExperimentsInput{Tag: "nightly"})
	if err != nil {
		t.Fatal(err)
	}
	if tagged.Total != 1 || tagged.Runs[0].Name != "baseline" {
		t.Errorf("tagged = %+v", tagged)
	}
}

func TestHandleListExperimentsNoStore(t *testing.T) {
	s := NewServer(nil)
	_, _, err := s.handleListExperiments(context.Background(), nil, listExperimentsInput{})
	if err == nil {
		t.Error("expected error without a run store")
	}
}
