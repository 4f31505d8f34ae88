package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/tracing"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/coursewise/coursewise/db"
	"github.com/coursewise/coursewise/internal/assistant"
	"github.com/coursewise/coursewise/internal/config"
	"github.com/coursewise/coursewise/internal/generator"
	"github.com/coursewise/coursewise/internal/ingest"
	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/session"
	"github.com/coursewise/coursewise/internal/tools"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	pool, dbCleanup, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.dbCleanup = dbCleanup
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q", cfg.EmbedderModel, cfg.Provider)
	}

	a.Knowledge = knowledge.New(pool, knowledge.NewGenkitEmbedder(embedder), cfg.SearchTopK, logger)

	registry, toolRefs, err := provideTools(g, a.Knowledge, logger)
	if err != nil {
		return nil, err
	}
	a.Registry = registry

	client, err := generator.NewGenkitClient(g, cfg.FullModelName(), cfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	a.Generator = generator.New(client, registry, toolRefs, cfg.MaxRounds, logger)

	a.Sessions = session.NewStore(cfg.MaxHistory, logger)
	a.Assistant = assistant.New(a.Generator, registry, a.Sessions, a.Knowledge, logger)
	a.Indexer = ingest.NewIndexer(a.Knowledge, ingest.NewProcessor(cfg.ChunkSize, cfg.ChunkOverlap), logger)

	return a, nil
}

// provideOtelShutdown sets up OTLP trace export before Genkit
// initialization so spans from generate calls reach the collector.
// Returns a shutdown func; a config with tracing disabled gets a no-op.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger *slog.Logger) func() {
	tc := cfg.Tracing
	if !tc.Enabled {
		return func() {}
	}

	endpoint := tc.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	// Set OTEL env vars for Genkit's TracerProvider to pick up.
	// SAFETY: os.Setenv is not concurrent-safe, but this function is
	// called exactly once during startup, before goroutines are spawned.
	if tc.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", tc.ServiceName)
	}
	if tc.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+tc.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(), // local collector doesn't need TLS
	)
	if err != nil {
		logger.Warn("creating OTLP exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("tracing enabled",
		"endpoint", endpoint,
		"service", tc.ServiceName,
		"environment", tc.Environment,
	)

	shutdown := tracing.TracerProvider().Shutdown

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideDBPool runs migrations and creates a PostgreSQL connection
// pool. Each new connection registers the pgvector types so embedding
// columns scan into pgvector.Vector directly.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	cleanup := func() {
		pool.Close()
	}

	return pool, cleanup, nil
}

// provideGenkit initializes Genkit with the configured AI provider.
// Supports gemini (default) and ollama. Call ordering in Setup ensures
// tracing is set up first.
func provideGenkit(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*genkit.Genkit, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = config.ProviderGemini
	}

	var g *genkit.Genkit

	switch provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration (no auto-discovery)
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		logger.Info("initialized Genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)

	default: // gemini
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized Genkit with gemini provider", "model", cfg.ModelName)
	}

	return g, nil
}

// provideEmbedder looks up the embedder registered by the AI provider
// plugin. Ollama embedders are keyed by server address; Gemini by
// model name.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	switch cfg.Provider {
	case config.ProviderOllama:
		return ollama.Embedder(g, cfg.OllamaHost)
	default: // gemini
		return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	}
}

// provideTools builds the tool registry backed by the knowledge store
// and registers the tool schemas with Genkit.
func provideTools(g *genkit.Genkit, store *knowledge.Store, logger *slog.Logger) (*tools.Registry, []ai.ToolRef, error) {
	registry := tools.NewRegistry(logger)
	registry.Register(tools.NewCourseSearch(store, logger))
	registry.Register(tools.NewCourseOutline(store))

	refs, err := tools.RegisterGenkit(g, registry)
	if err != nil {
		return nil, nil, fmt.Errorf("registering tools: %w", err)
	}

	logger.Info("tools registered at construction", "count", len(refs))
	return registry, refs, nil
}
