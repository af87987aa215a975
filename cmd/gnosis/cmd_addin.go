package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gnosis/internal/addin"
	"gnosis/internal/format"
)

var addinFlags struct {
	dir    string
	format string
}

var addinCmd = &cobra.Command{
	Use:   "addin",
	Short: "Inspect and validate analysis add-ins",
}

var addinValidateCmd = &cobra.Command{
	Use:   "validate <manifest.yaml>",
	Short: "Validate an add-in manifest against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddinValidate,
}

var addinListCmd = &cobra.Command{
	Use:   "list",
	Short: "List valid add-in manifests in a directory",
	RunE:  runAddinList,
}

func init() {
	addinListCmd.Flags().StringVar(&addinFlags.dir, "dir", "./addins", "Manifest directory")
	addinListCmd.Flags().StringVar(&addinFlags.format, "format", "ascii", "Table format (ascii, markdown)")
	addinCmd.AddCommand(addinValidateCmd)
	addinCmd.AddCommand(addinListCmd)
}

func runAddinValidate(cmd *cobra.Command, args []string) error {
	m, err := addin.LoadManifest(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (entry point %s, %d metrics)\n",
		format.BoolMark(true), m.Name, m.Version, m.EntryPoint, len(m.Metrics))
	return nil
}

func runAddinList(cmd *cobra.Command, _ []string) error {
	manifests, err := addin.ScanManifests(addinFlags.dir)
	if err != nil {
		return err
	}

	tb := format.NewTable(format.ParseMode(addinFlags.format))
	tb.Header("Name", "Version", "Entry Point", "Metrics")
	for _, m := range manifests {
		var names []string
		for _, metric := range m.Metrics {
			names = append(names, metric.Name)
		}
		tb.Row(m.Name, m.Version, m.EntryPoint, strings.Join(names, ", "))
	}
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}
