package format

import (
	"fmt"

	"gnosis/internal/table"
)

// RenderTable renders an analysis table for the terminal. Floats are shown
// with up to 4 significant digits; nil cells render empty.
func RenderTable(t *table.Table, m Mode) string {
	tb := NewTable(m)
	tb.Header(t.Columns()...)
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		vals := make([]any, len(t.Columns()))
		for j, col := range t.Columns() {
			vals[j] = renderCell(row[col])
		}
		tb.Row(vals...)
	}
	return tb.String()
}

func renderCell(v table.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.4g", x)
	default:
		return fmt.Sprint(x)
	}
}
