package addin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gnosis/internal/logging"
	"gnosis/internal/table"
)

// Addin is one analysis extension. Run receives the input table and the
// caller's parameters and returns named results.
type Addin interface {
	Manifest() Manifest
	Run(data *table.Table, params map[string]any) (map[string]any, error)
}

// Factory builds an add-in from its validated manifest. Factories are
// registered under the manifest entry-point name before discovery.
type Factory func(Manifest) (Addin, error)

// Registry holds discovered add-ins and the factories that build them.
type Registry struct {
	factories map[string]Factory
	addins    map[string]Addin
	log       *slog.Logger
}

// NewRegistry returns an empty add-in registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		addins:    make(map[string]Addin),
		log:       logging.New("addin"),
	}
}

// RegisterFactory binds a factory to an entry-point name.
func (r *Registry) RegisterFactory(entryPoint string, f Factory) {
	r.factories[entryPoint] = f
}

// Register adds a ready-made add-in under its manifest name.
func (r *Registry) Register(a Addin) {
	r.addins[a.Manifest().Name] = a
}

// Lookup returns the add-in registered under name.
func (r *Registry) Lookup(name string) (Addin, error) {
	a, ok := r.addins[name]
	if !ok {
		return nil, fmt.Errorf("add-in %q is not registered", name)
	}
	return a, nil
}

// Names lists registered add-ins, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.addins))
	for name := range r.addins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DiscoverFromManifests scans dir for *.yaml manifests, validates each, and
// instantiates it through the factory registered for its entry point.
// Invalid manifests and unknown entry points are logged and skipped. It
// returns the number of add-ins registered.
func (r *Registry) DiscoverFromManifests(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("scan add-in directory: %w", err)
	}

	registered := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		m, err := LoadManifest(path)
		if err != nil {
			r.log.Warn("skipping manifest", "path", path, "error", err)
			continue
		}
		factory, ok := r.factories[m.EntryPoint]
		if !ok {
			r.log.Warn("skipping manifest with unknown entry point",
				"path", path, "entry_point", m.EntryPoint)
			continue
		}
		a, err := factory(m)
		if err != nil {
			r.log.Warn("add-in factory failed", "path", path, "error", err)
			continue
		}
		r.addins[m.Name] = a
		r.log.Info("registered add-in", "name", m.Name, "version", m.Version)
		registered++
	}
	return registered, nil
}

// ScanManifests returns the valid manifests in dir, skipping files that
// fail validation.
func ScanManifests(dir string) ([]Manifest, error) {
	log := logging.New("addin")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan add-in directory: %w", err)
	}

	var out []Manifest
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		m, err := LoadManifest(path)
		if err != nil {
			log.Warn("skipping manifest", "path", path, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ValidateInput checks the manifest's input requirements against a table:
// every declared column must exist, and "numeric" columns must hold numbers.
func ValidateInput(m Manifest, data *table.Table) error {
	for _, in := range m.InputDataTypes {
		if !data.HasColumn(in.Column) {
			return fmt.Errorf("add-in %s: required column %q not found in data", m.Name, in.Column)
		}
		if in.Type == "numeric" && !data.IsNumeric(in.Column) {
			return fmt.Errorf("add-in %s: column %q must be numeric", m.Name, in.Column)
		}
	}
	return nil
}

// RunAddin executes an add-in after input validation, converting panics in
// third-party code into errors.
func RunAddin(a Addin, data *table.Table, params map[string]any) (results map[string]any, err error) {
	log := logging.New("addin")
	m := a.Manifest()

	if err := ValidateInput(m, data); err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("add-in %s panicked: %v", m.Name, rec)
			log.Error("add-in panicked", "name", m.Name, "panic", rec)
		}
	}()

	results, err = a.Run(data, params)
	if err != nil {
		log.Error("add-in failed", "name", m.Name, "error", err)
		return nil, fmt.Errorf("add-in %s: %w", m.Name, err)
	}
	return results, nil
}
