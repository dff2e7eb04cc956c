package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swapsync/swapsync-cli/internal/adapters/driving/mcp"
	"github.com/swapsync/swapsync-cli/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the sync status, the pending and abandoned queues and
the local records, and can trigger a sync pass. By default it communicates
over stdio using JSON-RPC and can be used with Claude Desktop and other
MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  swapsync mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  swapsync mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "swapsync": {
        "command": "/path/to/swapsync",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	r, err := requireRuntime()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	stopBackground := startBackground(ctx, r)
	defer stopBackground()

	// Keep connectivity tracked so reconnects trigger a sync while serving.
	go func() {
		if err := r.Status.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("status watcher stopped: %v", err)
		}
	}()
	defer r.Status.Stop()

	ports := &mcp.Ports{
		Status:  r.Status,
		Queue:   r.Queue,
		Records: r.Records,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
