// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvLevel is the environment variable consulted by DefaultConfig.
const EnvLevel = "TUNEBOX_LOG_LEVEL"

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"

	// File, when set, sends output to a rotating log file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger creates a configured slog.Logger.
// The returned closer releases the log file, if any.
func NewLogger(cfg Config) (*slog.Logger, io.Closer) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		// Add a source location for debug and error levels
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		out = rotating
		closer = rotating
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer
}

// ParseLevel maps a level name to a slog level.
// Valid values: DEBUG, INFO, WARN, WARNING, ERROR (case-insensitive).
// Unknown names fall back to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultConfig returns the default logger configuration.
// Parses the TUNEBOX_LOG_LEVEL environment variable to set the log level.
// Default: INFO
func DefaultConfig() Config {
	level := slog.LevelInfo
	if envLevel := os.Getenv(EnvLevel); envLevel != "" {
		level = ParseLevel(envLevel)
	}

	return Config{
		Level:      level,
		Format:     "text",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}
