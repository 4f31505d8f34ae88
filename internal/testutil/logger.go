package testutil

import (
	"log/slog"

	"github.com/coursewise/coursewise/internal/log"
)

// DiscardLogger returns a logger that drops all output. Tests pass it
// to components that require a logger.
func DiscardLogger() *slog.Logger {
	return log.NewNop()
}
