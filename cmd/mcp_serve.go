package cmd

import (
	"log/slog"

	"github.com/chris-regnier/contentcal/internal/mcptools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Run MCP server on stdio",
	Long: `Starts a Model Context Protocol (MCP) server that exposes the content
calendar over stdio transport, so MCP clients can read and rearrange the
schedule.

Available tools:
  - calendar_view: Items of the month, week or day containing a date
  - day_items: Every item scheduled on one day
  - reschedule_item: Move a pending post, draft article or outline to another day

Example client config:
  {
    "mcpServers": {
      "contentcal": {
        "command": "/path/to/contentcal",
        "args": ["mcp-serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	rootCmd.AddCommand(mcpServeCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	// Source is already opened in PersistentPreRunE
	if src == nil {
		return cmd.Help()
	}

	server := mcptools.CreateMCPServer(src, mcptools.Settings{
		Location:  location(),
		WeekStart: appConfig.WeekStartDay(),
		MonthCap:  appConfig.MonthCap,
		Now:       now,
	})

	// Logs go to stderr; stdout is reserved for the MCP protocol.
	slog.Info("starting MCP server (stdio transport)", "source", appConfig.Source, "data_dir", appConfig.DataDir)

	// Blocks until the transport is closed
	return server.Run(commandContext(cmd), &mcp.StdioTransport{})
}
