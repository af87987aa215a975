package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"gnosis/internal/table"
)

// identifierPattern restricts table and column names interpolated into SQL.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresAccess loads and saves one Postgres table. All cell values go
// through TEXT or DOUBLE PRECISION columns matching the table package's two
// cell types.
type PostgresAccess struct {
	db    *sql.DB
	table string
}

// NewPostgresAccess connects with a lib/pq DSN and targets tableName, which
// must be a plain SQL identifier.
func NewPostgresAccess(dsn, tableName string) (*PostgresAccess, error) {
	if !identifierPattern.MatchString(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &PostgresAccess{db: db, table: tableName}, nil
}

// Close releases the connection pool.
func (p *PostgresAccess) Close() error { return p.db.Close() }

func (p *PostgresAccess) Load(ctx context.Context) (*table.Table, error) {
	return p.query(ctx, nil)
}

func (p *PostgresAccess) Query(ctx context.Context, filters map[string]table.Value) (*table.Table, error) {
	return p.query(ctx, filters)
}

func (p *PostgresAccess) query(ctx context.Context, filters map[string]table.Value) (*table.Table, error) {
	q := fmt.Sprintf(`SELECT * FROM %q`, p.table)

	var args []any
	if len(filters) > 0 {
		cols := make([]string, 0, len(filters))
		for col := range filters {
			if !identifierPattern.MatchString(col) {
				return nil, fmt.Errorf("invalid column name %q", col)
			}
			cols = append(cols, col)
		}
		sort.Strings(cols)

		var conds []string
		for i, col := range cols {
			conds = append(conds, fmt.Sprintf(`%q = $%d`, col, i+1))
			args = append(args, filters[col])
		}
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := table.New(cols...)
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[col] = fromSQL(cells[i])
		}
		out.Append(row)
	}
	return out, rows.Err()
}

func (p *PostgresAccess) Save(ctx context.Context, data *table.Table) error {
	cols := data.Columns()
	for _, col := range cols {
		if !identifierPattern.MatchString(col) {
			return fmt.Errorf("invalid column name %q", col)
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var defs, quoted, params []string
	for i, col := range cols {
		typ := "TEXT"
		if data.IsNumeric(col) {
			typ = "DOUBLE PRECISION"
		}
		defs = append(defs, fmt.Sprintf(`%q %s`, col, typ))
		quoted = append(quoted, fmt.Sprintf(`%q`, col))
		params = append(params, fmt.Sprintf("$%d", i+1))
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, p.table)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %q (%s)`, p.table, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", p.table, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		p.table, strings.Join(quoted, ", "), strings.Join(params, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < data.Len(); i++ {
		row := data.Row(i)
		args := make([]any, len(cols))
		for j, col := range cols {
			args[j] = row[col]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// fromSQL maps driver values onto the table package's cell types.
func fromSQL(v any) table.Value {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return fmt.Sprint(x)
	}
}
