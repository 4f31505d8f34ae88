package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coursewise/coursewise/internal/app"
	"github.com/coursewise/coursewise/internal/config"
)

var showSources bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question about the indexed courses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAsk(cmd.Context(), args)
	},
}

func init() {
	askCmd.Flags().BoolVar(&showSources, "sources", false, "print the cited sources after the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(parent context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
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

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	answer, sources, _ := a.Assistant.Query(ctx, question, "")
	fmt.Println(answer)

	if showSources && len(sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, s := range sources {
			if s.Link != "" {
				fmt.Printf("  - %s (%s)\n", s.Text, s.Link)
			} else {
				fmt.Printf("  - %s\n", s.Text)
			}
		}
	}

	return nil
}
