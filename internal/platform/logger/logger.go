package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Dev mode prints human-readable text at
// debug level; production emits JSON at info level.
func New(devMode bool) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
