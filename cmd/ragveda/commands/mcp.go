// ABOUTME: MCP command starts a Model Context Protocol server
// ABOUTME: Lets LLM agents ask questions about the corpus via stdio
package commands

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/ragveda/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs ragveda as an MCP (Model Context Protocol) server over stdio,
exposing ask_question, corpus_stats, and engine_health tools.

The index is built in the background; tools report "not ready"
until it finishes.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  ragveda mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "ragveda": {
  #       "command": "ragveda",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Ragveda",
		versionInfo.Version,
		mcpserver.WithToolCapabilities(false),
	)

	mcp.RegisterTools(server, a.engine)

	initDone := startInitialize(ctx, a.engine)

	if !quiet {
		log.Println("Ragveda MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
	case err := <-serverErr:
		if err != nil {
			stop()
			<-initDone
			_ = a.Close()
			return fmt.Errorf("server error: %w", err)
		}
	}

	stop()
	<-initDone
	if err := a.Close(); err != nil {
		log.Printf("Warning: Error closing index: %v", err)
	}
	if !quiet {
		log.Println("Shutdown complete")
	}
	return nil
}
