package main

import (
	"context"

	"github.com/spf13/cobra"

	"gnosis/internal/logging"
	mcpserver "gnosis/internal/mcp"
)

var serveFlags struct {
	store string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing workbench steps as tools
(run_analytics, run_judge, run_visualization, list_experiments), so coding
agents can drive the workbench directly.

The server watches for parent process death and self-terminates rather than
lingering as a zombie.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.store, "store", ".gnosis/runs", "Run store backing list_experiments")
}

func runServe(cmd *cobra.Command, _ []string) error {
	runs, err := openRunStore(serveFlags.store)
	if err != nil {
		return err
	}
	defer runs.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	srv := mcpserver.NewServer(runs)
	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting gnosis MCP server over stdio")
	return srv.Run(ctx)
}
