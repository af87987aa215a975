package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gnosis/adapters/datastore"
	"gnosis/internal/format"
	"gnosis/internal/table"
)

var dataFlags struct {
	from    string
	to      string
	dsn     string
	table   string
	filters []string
	format  string
	limit   int
}

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Move experiment tables between CSV files and Postgres",
}

var dataCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy a table between stores, optionally filtered",
	Long: `Copy reads from --from and writes to --to. Either side is a CSV path, or
"postgres" to use --dsn/--table. Filters are column=value equality matches
applied on read.`,
	RunE: runDataCopy,
}

var dataQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print rows from a store matching column=value filters",
	RunE:  runDataQuery,
}

func init() {
	pf := dataCmd.PersistentFlags()
	pf.StringVar(&dataFlags.dsn, "dsn", "", "Postgres DSN for the postgres store")
	pf.StringVar(&dataFlags.table, "table", "", "Postgres table name")
	pf.StringArrayVar(&dataFlags.filters, "filter", nil, "column=value equality filter (repeatable)")

	dataCopyCmd.Flags().StringVar(&dataFlags.from, "from", "", "Source: CSV path or 'postgres' (required)")
	dataCopyCmd.Flags().StringVar(&dataFlags.to, "to", "", "Destination: CSV path or 'postgres' (required)")
	dataCopyCmd.MarkFlagRequired("from")
	dataCopyCmd.MarkFlagRequired("to")

	dataQueryCmd.Flags().StringVar(&dataFlags.from, "from", "", "Source: CSV path or 'postgres' (required)")
	dataQueryCmd.Flags().StringVar(&dataFlags.format, "format", "ascii", "Table format (ascii, markdown)")
	dataQueryCmd.Flags().IntVar(&dataFlags.limit, "limit", 20, "Max rows to print")
	dataQueryCmd.MarkFlagRequired("from")

	dataCmd.AddCommand(dataCopyCmd)
	dataCmd.AddCommand(dataQueryCmd)
}

// openDataAccess maps a --from/--to value onto a store.
func openDataAccess(source string) (datastore.DataAccess, func() error, error) {
	if source == "postgres" {
		if dataFlags.dsn == "" || dataFlags.table == "" {
			return nil, nil, fmt.Errorf("postgres store needs --dsn and --table")
		}
		pg, err := datastore.NewPostgresAccess(dataFlags.dsn, dataFlags.table)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	return datastore.NewFileAccess(source), func() error { return nil }, nil
}

func parseFilters(specs []string) (map[string]table.Value, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]table.Value, len(specs))
	for _, s := range specs {
		col, val, ok := strings.Cut(s, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("bad filter %q (want column=value)", s)
		}
		out[col] = val
	}
	return out, nil
}

func loadFiltered(cmd *cobra.Command, source string) (*table.Table, error) {
	src, closeSrc, err := openDataAccess(source)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	filters, err := parseFilters(dataFlags.filters)
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		return src.Query(cmd.Context(), filters)
	}
	return src.Load(cmd.Context())
}

func runDataCopy(cmd *cobra.Command, _ []string) error {
	data, err := loadFiltered(cmd, dataFlags.from)
	if err != nil {
		return err
	}

	dst, closeDst, err := openDataAccess(dataFlags.to)
	if err != nil {
		return err
	}
	defer closeDst()

	if err := dst.Save(cmd.Context(), data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "copied %d rows %s -> %s\n", data.Len(), dataFlags.from, dataFlags.to)
	return nil
}

func runDataQuery(cmd *cobra.Command, _ []string) error {
	data, err := loadFiltered(cmd, dataFlags.from)
	if err != nil {
		return err
	}

	shown := data
	if data.Len() > dataFlags.limit {
		kept := 0
		shown = data.Filter(func(table.Row) bool {
			kept++
			return kept <= dataFlags.limit
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), format.RenderTable(shown, format.ParseMode(dataFlags.format)))
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows (%d shown)\n", data.Len(), shown.Len())
	return nil
}
