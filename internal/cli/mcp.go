package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	dmenvmcp "github.com/valter-silva-au/dmenv/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the dmenv MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dmenv MCP server on stdio",
	Long: `Start the dmenv MCP server on stdio transport.

The server exposes the project selected by the global flags as MCP tools that
AI coding assistants can call: show_venv_path, show_lock, bump_in_lock.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()

		projectOpts.ProgressToStderr = true
		p, err := openProject(ctx)
		if err != nil {
			return err
		}

		srv := dmenvmcp.NewServer(p, appVersion)
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

