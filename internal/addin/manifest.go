// Package addin loads and runs third-party analysis add-ins described by
// YAML manifests.
package addin

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed manifest_schema.json
var manifestSchema []byte

// InputType names a column an add-in expects, optionally with a type
// constraint ("numeric", "string" or "any").
type InputType struct {
	Column string `yaml:"column" json:"column"`
	Type   string `yaml:"type" json:"type,omitempty"`
}

// MetricDecl declares one metric an add-in produces.
type MetricDecl struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// Manifest describes one add-in.
type Manifest struct {
	Name           string       `yaml:"name" json:"name"`
	Version        string       `yaml:"version" json:"version"`
	Author         string       `yaml:"author" json:"author"`
	Description    string       `yaml:"description" json:"description"`
	InputDataTypes []InputType  `yaml:"input_data_types" json:"input_data_types"`
	Metrics        []MetricDecl `yaml:"metrics" json:"metrics"`
	Dependencies   []string     `yaml:"dependencies" json:"dependencies"`
	EntryPoint     string       `yaml:"entry_point" json:"entry_point"`
}

// LoadManifest reads a YAML manifest and validates it against the embedded
// schema before decoding.
func LoadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	return parseManifest(raw)
}

func parseManifest(raw []byte) (Manifest, error) {
	// Round-trip through generic YAML so the schema sees the document as
	// JSON-typed values.
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(manifestSchema),
		gojsonschema.NewBytesLoader(asJSON),
	)
	if err != nil {
		return Manifest{}, fmt.Errorf("validate manifest: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Manifest{}, fmt.Errorf("invalid manifest: %s", strings.Join(msgs, "; "))
	}

	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(false)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}
