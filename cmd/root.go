// Package cmd provides the coursewise CLI commands.
//
// Commands:
//   - serve: HTTP API server for the course assistant
//   - ask: one-shot question from the terminal
//   - ingest: index a folder of course documents
//   - mcp: Model Context Protocol server for IDE integration
//
// Signal handling and graceful shutdown are implemented for the
// long-running commands via context cancellation.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/coursewise/coursewise/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "coursewise",
	Short: "Course materials assistant with retrieval-augmented answers",
	Long: `Coursewise answers questions about indexed course materials.

It searches course content with semantic retrieval, lets the model
decide when to search, and cites the lessons each answer came from.`,
	SilenceUsage: true,
}

// Execute is the main entry point for the coursewise CLI.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))

	return rootCmd.Execute()
}
