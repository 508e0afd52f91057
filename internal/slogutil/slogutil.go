package slogutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// silent is above every standard level.
const silent = slog.Level(100)

// NewLogger creates a logger writing lines to w. Paths are shown relative
// to the working directory.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	wd, _ := os.Getwd()
	return slog.New(NewLineHandler(w, &Options{Level: level, BaseDir: wd}))
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewLineHandler(io.Discard, &Options{Level: silent}))
}

// LevelFromString converts debug, info, warn or error (any case) to a
// slog.Level. Unrecognized strings give slog.LevelInfo.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity converts CLI verbosity flags to a slog.Level:
// quiet silences everything, 0 is warn, 1 is info, 2 and up is debug.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return silent
	}
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
