// Package assistant composes session history, the orchestration loop,
// and citation collection into the single query operation the outer
// shells call.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coursewise/coursewise/internal/session"
	"github.com/coursewise/coursewise/internal/tools"
)

// Generator is the orchestration loop boundary.
type Generator interface {
	Respond(ctx context.Context, query, history string) string
}

// Catalog supplies the course statistics surface.
type Catalog interface {
	CourseCount(ctx context.Context) (int, error)
	CourseTitles(ctx context.Context) ([]string, error)
}

// Assistant is the top-level query façade.
//
// The tool registry's citation accumulator is shared mutable state, so
// Query serializes loop execution and citation collection; session
// history remains the only state carried across queries.
type Assistant struct {
	generator Generator
	registry  *tools.Registry
	sessions  *session.Store
	catalog   Catalog
	logger    *slog.Logger

	mu sync.Mutex
}

// New creates an Assistant. logger may be nil.
func New(generator Generator, registry *tools.Registry, sessions *session.Store, catalog Catalog, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		generator: generator,
		registry:  registry,
		sessions:  sessions,
		catalog:   catalog,
		logger:    logger,
	}
}

// Query answers one question and returns the answer, its source
// citations, and the session id (freshly created when none was given).
//
// Citations are taken from the registry in the same critical section
// as the loop run, then the registry is clean for the next query. The
// exchange is appended to the session history afterwards.
func (a *Assistant) Query(ctx context.Context, text, sessionID string) (answer string, sources []tools.Citation, sid string) {
	if sessionID == "" {
		sessionID = a.sessions.Create()
	}
	history := a.sessions.History(sessionID)

	a.mu.Lock()
	answer = a.generator.Respond(ctx, text, history)
	sources = a.registry.TakeCitations()
	a.mu.Unlock()

	a.sessions.AddExchange(sessionID, text, answer)

	a.logger.Info("query answered",
		"session_id", sessionID,
		"query_length", len(text),
		"sources", len(sources))
	return answer, sources, sessionID
}

// CourseAnalytics returns the catalog size and title list for the
// stats endpoint.
func (a *Assistant) CourseAnalytics(ctx context.Context) (int, []string, error) {
	count, err := a.catalog.CourseCount(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("counting courses: %w", err)
	}
	titles, err := a.catalog.CourseTitles(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("listing courses: %w", err)
	}
	return count, titles, nil
}
