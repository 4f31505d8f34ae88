package api

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// health is a liveness probe endpoint for Docker/Kubernetes.
// Returns 200 OK with {"status":"ok"}.
func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readiness returns a readiness probe handler that pings the database.
// A nil pool reports ready unconditionally (serve mode without a
// database is not a supported configuration, but tests use it).
func readiness(pool *pgxpool.Pool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				logger.Error("readiness check failed", "error", err)
				writeError(w, http.StatusServiceUnavailable, "not_ready", "database not ready")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}
