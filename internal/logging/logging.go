// Package logging builds the zap loggers used by the command-line tools.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option adjusts the zap configuration before the logger is built.
type Option func(*zap.Config) error

// New builds a console logger writing to stderr at info level, then applies
// opts in order.
func New(opts ...Option) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return cfg.Build()
}

// WithLevel sets the minimum level from its name ("debug", "info", ...).
func WithLevel(name string) Option {
	return func(cfg *zap.Config) error {
		level, err := zapcore.ParseLevel(name)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
		return nil
	}
}

// WithDevelopment switches to zap's development behaviour: stack traces on
// warnings and panics on DPanic.
func WithDevelopment(dev bool) Option {
	return func(cfg *zap.Config) error {
		cfg.Development = dev
		return nil
	}
}

// WithJSON selects the JSON encoder instead of the console one.
func WithJSON(json bool) Option {
	return func(cfg *zap.Config) error {
		if json {
			cfg.Encoding = "json"
		}
		return nil
	}
}

// WithOutput replaces the output paths. Empty keeps stderr.
func WithOutput(paths ...string) Option {
	return func(cfg *zap.Config) error {
		if len(paths) > 0 {
			cfg.OutputPaths = paths
		}
		return nil
	}
}

// WithFields attaches fields to every entry. Empty keys are skipped.
func WithFields(fields map[string]any) Option {
	return func(cfg *zap.Config) error {
		if cfg.InitialFields == nil {
			cfg.InitialFields = map[string]any{}
		}
		for k, v := range fields {
			if k != "" {
				cfg.InitialFields[k] = v
			}
		}
		return nil
	}
}
