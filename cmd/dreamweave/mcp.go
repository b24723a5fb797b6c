package main

import (
	"fmt"
	"os"

	"github.com/oneirolab/dreamweave/pkg/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Aliases: []string{"serve-mcp"},
	Short:   "Run the DreamWeave MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the dream journal,
analysis, prompt building, export and retention functionality as MCP tools via STDIO.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\dreamweave\dreamweave.db
- macOS: ~/Library/Application Support/dreamweave/dreamweave.db
- Linux: ~/.local/share/dreamweave/dreamweave.db

Example:
  dreamweave mcp
  dreamweave mcp --db dreamweave.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewDreamMCPServer(dbPath)
		if err != nil {
			return err
		}
		defer srv.Close()

		mcp.RegisterAllTools(srv.MCPRawServer(), srv.DB())

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "DreamWeave MCP server started. DB: %s\n", srv.DbPath)
		fmt.Fprintln(os.Stderr, "Available tools: ping, create_dream, get_dream, list_dreams, delete_dream, analyze_dream, build_prompt, suggest_questions, export_dreams, enforce_retention")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		// Run the server (blocks until stdio closes).
		return srv.Start()
	},
}
