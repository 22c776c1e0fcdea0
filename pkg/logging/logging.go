// Package logging builds the zap loggers used by the command and pipeline.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Level is a zap level name ("debug", "info", "warn", "error").
	// Empty means info.
	Level string

	// Verbose forces debug level regardless of Level.
	Verbose bool

	// JSON selects JSON output instead of the console encoder.
	JSON bool
}

// New builds a production-style logger writing to stderr.
func New(options Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if options.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(options.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", options.Level, err)
		}
	}
	if options.Verbose {
		level = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	if !options.JSON {
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// OrNop returns logger, or a no-op logger when logger is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
