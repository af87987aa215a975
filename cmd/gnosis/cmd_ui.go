package main

import (
	"github.com/spf13/cobra"

	"gnosis/internal/webui"
)

var uiFlags struct {
	addr string
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Serve the browser data explorer",
	Long: `Serves a single-page data explorer: load a CSV, preview it, run a
group-by aggregation and download the result.`,
	RunE: runUI,
}

func init() {
	uiCmd.Flags().StringVar(&uiFlags.addr, "addr", "localhost:8077", "Listen address")
}

func runUI(_ *cobra.Command, _ []string) error {
	return webui.NewServer().Run(uiFlags.addr)
}
