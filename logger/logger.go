// Package logger configures the process-wide structured logger. The
// computation packages never log; warnings travel as data on the result.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init builds a JSON slog logger at the given level and installs it as the
// default. An unknown level falls back to info.
func Init(levelStr string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
