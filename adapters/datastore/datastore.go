// Package datastore abstracts where experiment tables live: CSV files on
// disk or a Postgres database.
package datastore

import (
	"context"

	"gnosis/internal/table"
)

// DataAccess loads and saves experiment tables. Query applies column=value
// equality filters on top of Load.
type DataAccess interface {
	Load(ctx context.Context) (*table.Table, error)
	Save(ctx context.Context, data *table.Table) error
	Query(ctx context.Context, filters map[string]table.Value) (*table.Table, error)
}

// matchAll reports whether a row satisfies every equality filter.
func matchAll(row table.Row, filters map[string]table.Value) bool {
	for col, want := range filters {
		if row[col] != want {
			return false
		}
	}
	return true
}
