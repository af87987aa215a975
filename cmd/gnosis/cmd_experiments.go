package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gnosis/internal/format"
	"gnosis/internal/tracker"
)

var experimentsFlags struct {
	store  string
	tag    string
	name   string
	config string
	format string
}

var experimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "Track and list experiment runs",
}

var experimentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked runs, optionally filtered by tag",
	RunE:  runExperimentsList,
}

var experimentsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentsShow,
}

var experimentsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Record a run with a fingerprinted config",
	RunE:  runExperimentsSave,
}

func init() {
	pf := experimentsCmd.PersistentFlags()
	pf.StringVar(&experimentsFlags.store, "store", ".gnosis/runs", "Run store: a directory, or a .db path for SQLite")

	experimentsListCmd.Flags().StringVar(&experimentsFlags.tag, "tag", "", "Only show runs carrying this tag")
	experimentsListCmd.Flags().StringVar(&experimentsFlags.format, "format", "ascii", "Table format (ascii, markdown)")

	sf := experimentsSaveCmd.Flags()
	sf.StringVar(&experimentsFlags.name, "name", "", "Run name (required)")
	sf.StringVarP(&experimentsFlags.config, "config", "f", "", "Config file to fingerprint, YAML or JSON (required)")
	sf.StringVar(&experimentsFlags.tag, "tag", "", "Comma-separated tags")
	experimentsSaveCmd.MarkFlagRequired("name")
	experimentsSaveCmd.MarkFlagRequired("config")

	experimentsCmd.AddCommand(experimentsListCmd)
	experimentsCmd.AddCommand(experimentsShowCmd)
	experimentsCmd.AddCommand(experimentsSaveCmd)
}

// openRunStore picks the backend from the path: .db opens SQLite, anything
// else is a JSON file directory.
func openRunStore(path string) (tracker.Store, error) {
	if strings.HasSuffix(path, ".db") {
		return tracker.NewSQLStore(path)
	}
	return tracker.NewFileStore(path)
}

func runExperimentsList(cmd *cobra.Command, _ []string) error {
	store, err := openRunStore(experimentsFlags.store)
	if err != nil {
		return err
	}
	defer store.Close()

	var runs []tracker.Run
	if experimentsFlags.tag != "" {
		runs, err = store.FilterByTag(experimentsFlags.tag)
	} else {
		runs, err = store.List()
	}
	if err != nil {
		return err
	}

	tb := format.NewTable(format.ParseMode(experimentsFlags.format))
	tb.Header("ID", "Name", "Fingerprint", "Tags", "Created")
	for _, r := range runs {
		tb.Row(r.ID[:8], r.Name, format.Truncate(r.Fingerprint, 12),
			strings.Join(r.Tags, ","), r.CreatedAt.Format("2006-01-02 15:04"))
	}
	tb.Footer("", "", "", "total", len(runs))
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

func runExperimentsShow(cmd *cobra.Command, args []string) error {
	store, err := openRunStore(experimentsFlags.store)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Load(args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runExperimentsSave(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(experimentsFlags.config)
	if err != nil {
		return err
	}
	cfg, err := decodeConfig(raw)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", experimentsFlags.config, err)
	}

	var tags []string
	if experimentsFlags.tag != "" {
		tags = strings.Split(experimentsFlags.tag, ",")
	}
	run, err := tracker.NewRun(experimentsFlags.name, cfg, tags)
	if err != nil {
		return err
	}

	store, err := openRunStore(experimentsFlags.store)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(run); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved run %s (fingerprint %s)\n",
		run.ID, format.Truncate(run.Fingerprint, 12))
	return nil
}

func decodeConfig(raw []byte) (map[string]any, error) {
	var cfg map[string]any
	if json.Valid(raw) {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
