// Package table provides the in-memory tabular dataset the workbench steps
// exchange: an ordered list of columns and rows of column→value cells.
// Cells hold float64, string, or nil (missing). Numeric reductions skip nil
// cells; row counts include them.
package table

import "fmt"

// Value is a single cell: float64, string, or nil for a missing value.
// Integer values supplied by callers are accepted and coerced via AsFloat.
type Value = any

// Row maps column names to cell values.
type Row map[string]Value

// Table is an ordered table of rows. The zero value is not usable; construct
// with New.
type Table struct {
	cols []string
	rows []Row
}

// New returns an empty table with the given columns, in order.
func New(cols ...string) *Table {
	t := &Table{cols: make([]string, len(cols))}
	copy(t.cols, cols)
	return t
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Len returns the number of rows, including rows with missing cells.
func (t *Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.cols {
		if c == name {
			return true
		}
	}
	return false
}

// Row returns the i-th row. The returned map is shared with the table;
// callers that mutate it should work on a Copy of the table.
func (t *Table) Row(i int) Row { return t.rows[i] }

// At returns the cell at row i, column name (nil if the column is absent).
func (t *Table) At(i int, name string) Value { return t.rows[i][name] }

// Append adds a row. Keys not among the table's columns are dropped;
// columns absent from the row are stored as nil.
func (t *Table) Append(r Row) {
	row := make(Row, len(t.cols))
	for _, c := range t.cols {
		row[c] = r[c]
	}
	t.rows = append(t.rows, row)
}

// AddColumn sets a column from a value slice, one entry per row. An existing
// column of the same name is overwritten in place; a new column is appended
// to the column order.
func (t *Table) AddColumn(name string, vals []Value) error {
	if len(vals) != len(t.rows) {
		return &ShapeError{Column: name, Want: len(t.rows), Got: len(vals)}
	}
	if !t.HasColumn(name) {
		t.cols = append(t.cols, name)
	}
	for i := range t.rows {
		t.rows[i][name] = vals[i]
	}
	return nil
}

// Column returns all cell values of the named column, nil cells included.
func (t *Table) Column(name string) ([]Value, error) {
	if !t.HasColumn(name) {
		return nil, &ColumnError{Column: name}
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[name]
	}
	return out, nil
}

// Copy returns a deep copy: mutating the copy's rows never affects the
// original.
func (t *Table) Copy() *Table {
	c := New(t.cols...)
	c.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		row := make(Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		c.rows[i] = row
	}
	return c
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.cols...)
	for _, r := range t.rows {
		if keep(r) {
			out.Append(r)
		}
	}
	return out
}

// AsFloat coerces a cell to float64. It returns false for nil, strings, and
// any other non-numeric value.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// IsNumeric reports whether the named column is numeric: it has at least one
// non-nil cell and every non-nil cell coerces to float64.
func (t *Table) IsNumeric(name string) bool {
	seen := false
	for _, r := range t.rows {
		v := r[name]
		if v == nil {
			continue
		}
		if _, ok := AsFloat(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// NumericColumns returns the numeric columns in declaration order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.cols {
		if t.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

// Floats returns the non-nil numeric values of the named column, in row
// order. Non-numeric cells are skipped along with nils.
func (t *Table) Floats(name string) []float64 {
	var out []float64
	for _, r := range t.rows {
		if f, ok := AsFloat(r[name]); ok {
			out = append(out, f)
		}
	}
	return out
}

// ColumnError reports a reference to a column the table does not have.
type ColumnError struct{ Column string }

func (e *ColumnError) Error() string { return fmt.Sprintf("column %q not found", e.Column) }

// ShapeError reports a column-length mismatch on AddColumn.
type ShapeError struct {
	Column    string
	Want, Got int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("column %q length mismatch: want %d values, got %d", e.Column, e.Want, e.Got)
}
