// Package app provides application initialization and dependency
// wiring. Setup builds the full component graph (tracing, database
// pool, Genkit, knowledge store, tools, orchestration loop, sessions)
// and returns an App whose Close releases everything in reverse order.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursewise/coursewise/internal/assistant"
	"github.com/coursewise/coursewise/internal/config"
	"github.com/coursewise/coursewise/internal/generator"
	"github.com/coursewise/coursewise/internal/ingest"
	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/session"
	"github.com/coursewise/coursewise/internal/tools"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Core services
	Genkit    *genkit.Genkit
	DBPool    *pgxpool.Pool
	Knowledge *knowledge.Store
	Registry  *tools.Registry
	Generator *generator.Generator
	Sessions  *session.Store
	Assistant *assistant.Assistant
	Indexer   *ingest.Indexer

	otelCleanup func()
	dbCleanup   func()
}

// Close gracefully shuts down all resources in reverse setup order.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.dbCleanup != nil {
		a.dbCleanup()
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
