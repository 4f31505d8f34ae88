// Package api exposes the assistant over a JSON HTTP API.
//
// Routes:
//
//	POST /api/v1/query    answer a question (optionally within a session)
//	GET  /api/v1/courses  course catalog statistics
//	GET  /health          liveness probe
//	GET  /ready           readiness probe (database ping)
//
// Health probes are registered outside the middleware stack so
// orchestrator polling is never rate limited or logged per request.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger     *slog.Logger
	Assistant  Assistant     // Required
	Pool       *pgxpool.Pool // Optional: nil disables database ping in /ready
	TrustProxy bool          // Trust X-Real-IP/X-Forwarded-For headers
	RateBurst  int           // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Assistant == nil {
		return nil, errors.New("assistant is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	qh := &queryHandler{assistant: cfg.Assistant, logger: logger}
	ch := &coursesHandler{assistant: cfg.Assistant, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/query", qh.answer)
	mux.HandleFunc("GET /api/v1/courses", ch.stats)

	// Rate limiter: per-IP token bucket (1 token/sec refill)
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in
	// log attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Use a top-level mux to separate health probes from middleware stack
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
