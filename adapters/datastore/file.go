package datastore

import (
	"context"

	"gnosis/internal/table"
)

// FileAccess reads and writes one CSV file.
type FileAccess struct {
	Path string
}

// NewFileAccess returns file-backed data access for path.
func NewFileAccess(path string) *FileAccess {
	return &FileAccess{Path: path}
}

func (f *FileAccess) Load(_ context.Context) (*table.Table, error) {
	return table.ReadCSV(f.Path)
}

func (f *FileAccess) Save(_ context.Context, data *table.Table) error {
	return table.WriteCSV(data, f.Path)
}

func (f *FileAccess) Query(ctx context.Context, filters map[string]table.Value) (*table.Table, error) {
	data, err := f.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Filter(func(row table.Row) bool {
		return matchAll(row, filters)
	}), nil
}
