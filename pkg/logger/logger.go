package logger

import (
	"log/slog"
	"os"
)

var Log *slog.Logger

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}

// With returns a child logger carrying the given attributes, initializing the
// package logger first if needed (keeps tests independent of Init ordering).
func With(args ...any) *slog.Logger {
	if Log == nil {
		Init()
	}
	return Log.With(args...)
}
