package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps each run as a JSON file named <id>.json in a directory.
type FileStore struct {
	dir string
}

// NewFileStore opens (creating if needed) a run directory.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Save(run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run has no id")
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(run.ID), data, 0o644)
}

func (s *FileStore) Load(id string) (Run, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Run{}, fmt.Errorf("run %q not found", id)
		}
		return Run{}, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, fmt.Errorf("decode run %q: %w", id, err)
	}
	return run, nil
}

func (s *FileStore) List() ([]Run, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var runs []Run
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		run, err := s.Load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})
	return runs, nil
}

func (s *FileStore) FilterByTag(tag string) ([]Run, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []Run
	for _, run := range all {
		if run.HasTag(tag) {
			out = append(out, run)
		}
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }
