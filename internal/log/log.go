// Package log configures the process wide slog handlers.
package log

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dotse/slug"
	slogmulti "github.com/samber/slog-multi"
)

type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// ToSlogLevel maps our levels to the equivalent slog level.
func ToSlogLevel(level Level) slog.Level {
	switch level {
	case Debug:
		return slog.LevelDebug
	case Info:
		return slog.LevelInfo
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// MustCreateLogger creates and installs the default global log handler. When file is a
// non-empty path, logs are also written there as JSON.
//
// Returns a cleanup function which should be called on program shutdown.
//
// Panics on failure to open the log file for writing.
func MustCreateLogger(level Level, file string) func() {
	var (
		closer = func() {}
		opts   = slug.HandlerOptions{
			HandlerOptions: slog.HandlerOptions{
				Level: ToSlogLevel(level),
			},
		}
		handlers []slog.Handler
	)

	handlers = append(handlers, slug.NewHandler(opts, os.Stdout))

	if file != "" {
		logFile, errLogFile := os.Create(file)
		if errLogFile != nil {
			panic(fmt.Sprintf("Failed to open logfile: %v", errLogFile))
		}

		closer = func() {
			if errClose := logFile.Close(); errClose != nil {
				fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", errClose)
			}
		}

		handlers = append(handlers, slog.NewJSONHandler(logFile, &slog.HandlerOptions{
			Level: ToSlogLevel(level),
		}))
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))

	return closer
}

// ErrAttr is a convenience wrapper for logging error values.
func ErrAttr(err error) slog.Attr {
	return slog.String("error", err.Error())
}
