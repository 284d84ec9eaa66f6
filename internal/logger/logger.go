package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/petasbytes/chat-cli/internal/responses"
)

// Setup installs a coloured stderr handler at the named level and
// returns the logger. "trace" enables wire-level payload logging.
func Setup(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "trace":
		logLevel = responses.LevelTrace
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.TimeOnly,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
