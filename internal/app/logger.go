package app

import (
	"log/slog"
	"os"
)

// NewLogger picks the handler by environment: JSON at Info for prod
// ingestion, text at Debug (on stderr) everywhere else.
func NewLogger(env string) *slog.Logger {
	if env == "prod" {
		h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
		return slog.New(h)
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h)
}
