// Package logging sets up the process-wide structured logger (§4.11),
// matching kshinn-umbra-gateway/gateway/main.go's slog.NewJSONHandler setup:
// a JSON handler over stdout, level selected by LOG_LEVEL.
package logging

import (
	"log/slog"
	"os"

	"github.com/copytrade/router-mirror/internal/xerrors"
)

// Init installs a JSON slog.Logger as the process default, returning it for
// callers that want to hold a reference.
func Init(level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ForHash returns a logger that attaches the originating transaction hash to
// every line it emits, matching §7's "every error log line carries {hash,
// component, kind, detail}" requirement.
func ForHash(logger *slog.Logger, hash string) *slog.Logger {
	return logger.With("hash", hash)
}

// LogError emits one structured error line per §7, extracting the taxonomy
// Kind when err carries one.
func LogError(logger *slog.Logger, component string, err error) {
	kind, ok := xerrors.KindOf(err)
	if !ok {
		logger.Error("unclassified error", "component", component, "detail", err.Error())
		return
	}
	logger.Error("pipeline error", "component", component, "kind", string(kind), "detail", err.Error())
}
