package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gnosis/internal/table"
)

// fakeClient echoes the model and prompt it was asked for.
type fakeClient struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (f *fakeClient) Generate(_ context.Context, model, prompt string) (ModelResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, model)
	f.mu.Unlock()
	if f.fail {
		return ModelResponse{}, errors.New("model unavailable")
	}
	return ModelResponse{Text: fmt.Sprintf("%s says: %s", model, prompt), Tokens: len(prompt)}, nil
}

func writePrompts(t *testing.T, csv string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "prompts.csv")
	if err := os.WriteFile(input, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return input, filepath.Join(dir, "completions.csv")
}

func TestRun(t *testing.T) {
	input, output := writePrompts(t, "prompt_id,prompt\np1,hello\np2,world\n")
	client := &fakeClient{}

	n, err := Run(context.Background(), Config{Input: input, Output: output, DefaultModel: "llama3", Workers: 2}, client)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Errorf("generated %d completions, want 2", n)
	}

	got, err := table.ReadCSV(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got.At(0, "completion") != "llama3 says: hello" {
		t.Errorf("completion = %v", got.At(0, "completion"))
	}
	if tok, _ := table.AsFloat(got.At(0, "completion_tokens")); tok != 5 {
		t.Errorf("completion_tokens = %v, want 5", got.At(0, "completion_tokens"))
	}
}

func TestRunPerRowModelResolution(t *testing.T) {
	input, output := writePrompts(t,
		"prompt,model_id,model\nq1,mistral,phi\nq2,,phi\nq3,,\n")
	client := &fakeClient{}

	if _, err := Run(context.Background(), Config{Input: input, Output: output, DefaultModel: "llama3", Workers: 1}, client); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := table.ReadCSV(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	wantPrefix := []string{"mistral", "phi", "llama3"}
	for i, model := range wantPrefix {
		want := fmt.Sprintf("%s says: q%d", model, i+1)
		if got.At(i, "completion") != want {
			t.Errorf("row %d completion = %v, want %q", i, got.At(i, "completion"), want)
		}
	}
}

func TestRunGenerateFailure(t *testing.T) {
	input, output := writePrompts(t, "prompt\nhello\n")
	client := &fakeClient{fail: true}

	_, err := Run(context.Background(), Config{Input: input, Output: output, DefaultModel: "llama3"}, client)
	if err == nil {
		t.Fatal("expected error when the model client fails")
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Error("output should not be written on failure")
	}
}

func TestRunMissingConfig(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Output: "o", DefaultModel: "m"}, "missing config key: input"},
		{Config{Input: "i", DefaultModel: "m"}, "missing config key: output"},
		{Config{Input: "i", Output: "o"}, "missing config key: model"},
	}
	for _, tt := range tests {
		_, err := Run(context.Background(), tt.cfg, &fakeClient{})
		if err == nil || err.Error() != tt.want {
			t.Errorf("cfg %+v: err = %v, want %q", tt.cfg, err, tt.want)
		}
	}
}
