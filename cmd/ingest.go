package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coursewise/coursewise/internal/app"
	"github.com/coursewise/coursewise/internal/config"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [folder]",
	Short: "Index a folder of course documents",
	Long: `Ingest parses course documents (.txt, .md) from a folder, chunks
their lesson content, embeds each chunk, and stores everything in
PostgreSQL. Courses already in the catalog are skipped, so re-running
ingest on the same folder is safe.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(parent context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	folder := cfg.DocsDir
	if len(args) > 0 {
		folder = args[0]
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Warn("shutdown error", "error", closeErr)
		}
	}()

	courses, chunks, err := a.Indexer.IngestFolder(ctx, folder)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", folder, err)
	}

	fmt.Printf("Added %d courses (%d chunks) from %s\n", courses, chunks, folder)
	return nil
}
