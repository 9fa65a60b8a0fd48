// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is written beside the executable.
const DefaultFile = "clickguardian.log"

// Options controls logger construction.
type Options struct {
	// File receives JSON log lines in addition to stderr. Empty means stderr only.
	File    string
	Verbose bool
	// Console switches to the human-readable development encoder.
	Console bool
}

// New builds a logger from options.
func New(options Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if options.Console {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if options.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	if options.File != "" {
		config.OutputPaths = append(config.OutputPaths, options.File)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
