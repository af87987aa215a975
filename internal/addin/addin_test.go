package addin

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gnosis/internal/table"
)

const validManifest = `name: score-spread
version: 1.0.0
author: workbench team
description: Spread of scores per group.
input_data_types:
  - column: score
    type: numeric
metrics:
  - name: spread
    description: max minus min score
dependencies: []
entry_point: builtin.spread
`

type spreadAddin struct {
	manifest Manifest
	panicky  bool
	failWith error
}

func (a *spreadAddin) Manifest() Manifest { return a.manifest }

func (a *spreadAddin) Run(data *table.Table, _ map[string]any) (map[string]any, error) {
	if a.panicky {
		panic("boom")
	}
	if a.failWith != nil {
		return nil, a.failWith
	}
	vals := data.Floats("score")
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return map[string]any{"spread": max - min}, nil
}

func scoreTable() *table.Table {
	tbl := table.New("score")
	for _, v := range []float64{2, 5, 3} {
		tbl.Append(table.Row{"score": v})
	}
	return tbl
}

func TestParseManifest(t *testing.T) {
	m, err := parseManifest([]byte(validManifest))
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}
	if m.Name != "score-spread" || m.EntryPoint != "builtin.spread" {
		t.Errorf("unexpected manifest: %+v", m)
	}
	if len(m.Metrics) != 1 || m.Metrics[0].Name != "spread" {
		t.Errorf("metrics = %+v", m.Metrics)
	}
}

func TestParseManifestRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"missing entry_point", strings.Replace(validManifest, "entry_point: builtin.spread\n", "", 1)},
		{"missing version", strings.Replace(validManifest, "version: 1.0.0\n", "", 1)},
		{"metric without name", strings.Replace(validManifest, "  - name: spread\n", "  - description: only\n", 1)},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseManifest([]byte(tt.manifest)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDiscoverFromManifests(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile("spread.yaml", validManifest)
	writeFile("broken.yaml", "name: broken\n") // fails schema validation
	writeFile("orphan.yaml", strings.Replace(validManifest,
		"entry_point: builtin.spread", "entry_point: builtin.unknown", 1))
	writeFile("notes.txt", "ignored")

	r := NewRegistry()
	r.RegisterFactory("builtin.spread", func(m Manifest) (Addin, error) {
		return &spreadAddin{manifest: m}, nil
	})

	n, err := r.DiscoverFromManifests(dir)
	if err != nil {
		t.Fatalf("DiscoverFromManifests: %v", err)
	}
	if n != 1 {
		t.Errorf("registered %d add-ins, want 1", n)
	}
	if _, err := r.Lookup("score-spread"); err != nil {
		t.Errorf("Lookup after discovery: %v", err)
	}
	if _, err := r.Lookup("broken"); err == nil {
		t.Error("invalid manifest should not be registered")
	}
}

func TestValidateInput(t *testing.T) {
	m, err := parseManifest([]byte(validManifest))
	if err != nil {
		t.Fatal(err)
	}

	if err := ValidateInput(m, scoreTable()); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	noCol := table.New("other")
	noCol.Append(table.Row{"other": 1.0})
	if err := ValidateInput(m, noCol); err == nil {
		t.Error("expected error for missing required column")
	}

	strCol := table.New("score")
	strCol.Append(table.Row{"score": "high"})
	if err := ValidateInput(m, strCol); err == nil {
		t.Error("expected error for non-numeric required column")
	}
}

func TestRunAddin(t *testing.T) {
	m, _ := parseManifest([]byte(validManifest))

	results, err := RunAddin(&spreadAddin{manifest: m}, scoreTable(), nil)
	if err != nil {
		t.Fatalf("RunAddin: %v", err)
	}
	if results["spread"] != 3.0 {
		t.Errorf("spread = %v, want 3", results["spread"])
	}
}

func TestRunAddinRecoversPanic(t *testing.T) {
	m, _ := parseManifest([]byte(validManifest))
	_, err := RunAddin(&spreadAddin{manifest: m, panicky: true}, scoreTable(), nil)
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Errorf("err = %v, want panic converted to error", err)
	}
}

func TestRunAddinWrapsFailure(t *testing.T) {
	m, _ := parseManifest([]byte(validManifest))
	sentinel := errors.New("no data")
	_, err := RunAddin(&spreadAddin{manifest: m, failWith: sentinel}, scoreTable(), nil)
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want wrapped sentinel", err)
	}
}
