// Package config loads the workbench configuration file.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MetricCategory toggles one family of metrics in the workbench.
type MetricCategory struct {
	Enabled bool `yaml:"enabled"`
}

// Workbench is the top-level workbench configuration.
type Workbench struct {
	Metrics  map[string]MetricCategory `yaml:"metrics"`
	AddinDir string                    `yaml:"addin_dir"`
	RunStore string                    `yaml:"run_store"` // experiment run directory or sqlite path
	Ollama   struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"ollama"`
}

// Load reads and validates a workbench config file.
func Load(path string) (*Workbench, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Workbench
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the metrics section is present and well-formed.
func (w *Workbench) Validate() error {
	if len(w.Metrics) == 0 {
		return fmt.Errorf("missing or empty metrics section")
	}
	return nil
}

// MetricEnabled reports whether a metric category is switched on. Unknown
// categories are disabled.
func (w *Workbench) MetricEnabled(category string) bool {
	return w.Metrics[category].Enabled
}

// EnabledCategories lists the switched-on metric categories, sorted.
func (w *Workbench) EnabledCategories() []string {
	var out []string
	for name, c := range w.Metrics {
		if c.Enabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// RequireKeys reports the first missing key of a step config as a
// "missing config key" error. Step runners use it before touching any input.
func RequireKeys(step map[string]any, keys ...string) error {
	for _, k := range keys {
		v, ok := step[k]
		if !ok || v == nil || v == "" {
			return fmt.Errorf("missing config key: %s", k)
		}
	}
	return nil
}
