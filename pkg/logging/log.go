// Package logging threads a logr.Logger through every component
// constructor, backed by zap for both its supported output formats.
package logging

import (
	"context"
	"errors"
	"flag"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// JSONFormat represents JSON logging mode.
	JSONFormat = "json"
	// TextFormat is the default, human-readable logging mode.
	TextFormat = "text"
)

var global logr.Logger = logr.Discard()

// RegisterFlags adds --log-format to the given flag set.
func RegisterFlags(flags *flag.FlagSet, target *string) {
	flags.StringVar(target, "log-format", TextFormat, "log output format: text or json")
}

// Setup configures the global logger with the supplied format. Returns an
// error if the format is not recognized.
func Setup(logFormat string) error {
	var cfg zap.Config
	switch logFormat {
	case TextFormat:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case JSONFormat:
		cfg = zap.NewProductionConfig()
	default:
		return errors.New("log format not recognized, pass `text` for text mode or `json` to enable JSON logging")
	}
	zapLog, err := cfg.Build()
	if err != nil {
		return err
	}
	global = zapr.NewLogger(zapLog)
	return nil
}

// GlobalLogger returns the process's configured logr.Logger.
func GlobalLogger() logr.Logger {
	return global
}

// WithName returns a new logr.Logger with the given name element added.
func WithName(name string) logr.Logger {
	return GlobalLogger().WithName(name)
}

// WithValues returns a new logr.Logger with additional key/value pairs.
func WithValues(keysAndValues ...interface{}) logr.Logger {
	return GlobalLogger().WithValues(keysAndValues...)
}

// FromContext returns a logger with predefined values from a context.
func FromContext(ctx context.Context, keysAndValues ...interface{}) (logr.Logger, error) {
	logger, err := logr.FromContext(ctx)
	if err != nil {
		return logger, err
	}
	return logger.WithValues(keysAndValues...), nil
}

// IntoContext takes a context and sets the logger as one of its values.
func IntoContext(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

// Background returns a context carrying the global logger.
func Background() context.Context {
	return IntoContext(context.Background(), GlobalLogger())
}
