package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const workbenchYAML = `metrics:
  statistical:
    enabled: true
  reliability:
    enabled: false
  aggregate:
    enabled: true
addin_dir: ./addins
run_store: ./runs
ollama:
  base_url: http://localhost:11434
  model: llama3
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, workbenchYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.MetricEnabled("statistical") {
		t.Error("statistical should be enabled")
	}
	if cfg.MetricEnabled("reliability") {
		t.Error("reliability should be disabled")
	}
	if cfg.MetricEnabled("unknown") {
		t.Error("unknown categories should be disabled")
	}
	if diff := cmp.Diff([]string{"aggregate", "statistical"}, cfg.EnabledCategories()); diff != "" {
		t.Errorf("EnabledCategories mismatch (-want +got):\n%s", diff)
	}
	if cfg.Ollama.Model != "llama3" {
		t.Errorf("ollama model = %q", cfg.Ollama.Model)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no metrics section", "addin_dir: ./addins\n", "metrics section"},
		{"empty metrics", "metrics: {}\n", "metrics section"},
		{"not yaml", "metrics: [", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRequireKeys(t *testing.T) {
	step := map[string]any{"input": "a.csv", "output": "", "extra": 1}

	if err := RequireKeys(step, "input"); err != nil {
		t.Errorf("present key reported missing: %v", err)
	}
	err := RequireKeys(step, "input", "output")
	if err == nil || err.Error() != "missing config key: output" {
		t.Errorf("err = %v, want missing config key: output", err)
	}
	err = RequireKeys(step, "group_by")
	if err == nil || err.Error() != "missing config key: group_by" {
		t.Errorf("err = %v, want missing config key: group_by", err)
	}
}
