package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing browser automation tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the persistent
browser session as tools. One browser session is shared across all tool calls:
it launches lazily on the first call that needs it and is evicted after a
period of inactivity.

Supported transports:
  stdio             Standard I/O (default, for Claude Code / MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  browser-cli serve
  browser-cli serve --transport streamable-http --port 8080
  browser-cli serve --headless=false --idle-timeout 600`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	addSessionFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	cfg := MCPConfig{
		Transport: transport,
		Port:      port,
		Session:   sessionConfigFromFlags(cmd),
	}

	srv := newMCPServer(cfg)
	defer srv.session.Close()

	if err := srv.serve(cfg); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
