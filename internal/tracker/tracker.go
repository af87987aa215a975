// Package tracker records experiment runs so configurations can be compared
// and deduplicated across workbench sessions.
package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one tracked experiment execution.
type Run struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Fingerprint string         `json:"fingerprint"`
	Config      map[string]any `json:"config"`
	Tags        []string       `json:"tags,omitempty"`
	Artifacts   []string       `json:"artifacts,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewRun builds a run with a generated ID, the config fingerprint, and the
// current timestamp.
func NewRun(name string, config map[string]any, tags []string) (Run, error) {
	fp, err := Fingerprint(config)
	if err != nil {
		return Run{}, err
	}
	return Run{
		ID:          uuid.NewString(),
		Name:        name,
		Fingerprint: fp,
		Config:      config,
		Tags:        tags,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Fingerprint hashes the canonical JSON of a config. Two configs with the
// same keys and values fingerprint identically regardless of map order.
func Fingerprint(config map[string]any) (string, error) {
	canonical, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("fingerprint config: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// HasTag reports whether the run carries tag.
func (r Run) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Store persists experiment runs.
type Store interface {
	Save(run Run) error
	Load(id string) (Run, error)
	List() ([]Run, error)
	FilterByTag(tag string) ([]Run, error)
	Close() error
}
