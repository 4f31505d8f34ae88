package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/coursewise/coursewise/internal/app"
	"github.com/coursewise/coursewise/internal/config"
	"github.com/coursewise/coursewise/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Model Context Protocol server on stdio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMCP(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// runMCP initializes and starts the MCP server on stdio transport.
func runMCP(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting MCP server", "version", Version)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	mcpServer, err := mcp.NewServer(mcp.Config{
		Name:     "coursewise",
		Version:  Version,
		Registry: a.Registry,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	logger.Info("MCP server ready", "name", "coursewise", "transport", "stdio")

	if err := mcpServer.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	logger.Info("MCP server shut down gracefully")
	return nil
}
