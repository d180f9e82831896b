package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/archdiag/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for diagram extraction and generation",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
extract ASCII diagrams and generate pattern scripts and diagrams.

The MCP server:
- Extracts ASCII diagrams from markdown via the extract_ascii_diagrams tool
- Lists and generates architecture patterns (list_patterns, generate_pattern)
- Lists and generates diagram types (list_diagram_types, generate_diagram)
- Communicates via stdio (standard MCP transport)

Document patterns are resolved against the current directory, using the
ignore list from the configuration.

Example:
  archdiag mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries the protocol, so status goes to stderr
	fmt.Fprintf(os.Stderr, "archdiag MCP Server %s\n", Version)
	fmt.Fprintf(os.Stderr, "Project Root: %s\n\n", root)

	server, err := mcp.NewServer(mcp.Options{
		Version:     Version,
		Root:        root,
		Ignore:      cfg.Extract.Ignore,
		Concurrency: cfg.Extract.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
