// Package log provides structured logging for go-posture.
// It wraps slog with sensible defaults and optional rotating file output.
package log

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Options configures the global logger.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Anything else means info.
	Level string

	// File, when set, receives a copy of every log line and is rotated by size.
	File string

	// MaxSizeMB is the rotation threshold for File. Default: 50.
	MaxSizeMB int
}

// Init initializes the global logger. Only the first call has an effect.
func Init(opts Options) {
	once.Do(func() {
		logger = slog.New(newHandler(opts))
		slog.SetDefault(logger)
	})
}

func newHandler(opts Options) slog.Handler {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var w io.Writer = os.Stdout
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 50
		}
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: 3,
			MaxAge:     7,
			LocalTime:  true,
			Compress:   true,
		})
	}

	// Use JSON in production, text in development
	if os.Getenv("GO_ENV") == "production" {
		return slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.NewTextHandler(w, handlerOpts)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
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

// L returns the global logger instance.
func L() *slog.Logger {
	Init(Options{Level: "info"})
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
