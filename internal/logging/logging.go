// Package logging builds the logr.Logger used across vbwear.
//
// The logger is backed by zap through zapr. Verbosity follows logr semantics:
// V(DEBUG) and V(TRACE) are only emitted when the configured verbosity is at
// least that high. Loggers travel in the context; FromContext falls back to the
// process-wide default set with SetDefault.
package logging

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels used with logger.V().
const (
	INFO  = 0
	DEBUG = 1
	TRACE = 2
)

// Options controls logger construction.
type Options struct {
	// Development enables human-friendly console output and stack traces on warnings.
	Development bool
	// Verbosity is the highest V level that is emitted.
	Verbosity int
	// JSON forces JSON encoding even in development mode.
	JSON bool
}

var (
	mu         sync.RWMutex
	defaultLog = logr.Discard()
)

// NewLogger creates a zap-backed logr.Logger.
func NewLogger(opts Options) (logr.Logger, error) {
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	if opts.JSON {
		cfg.Encoding = "json"
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	// zapr maps V(n) to zap level -n
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-opts.Verbosity))

	z, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(z), nil
}

// NewTestLogger installs a development logger at TRACE verbosity as the default
// logger and returns it. Used by test suites.
func NewTestLogger() logr.Logger {
	logger, err := NewLogger(Options{Development: true, Verbosity: TRACE})
	if err != nil {
		logger = logr.Discard()
	}
	SetDefault(logger)
	return logger
}

// SetDefault replaces the process-wide fallback logger.
func SetDefault(logger logr.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLog = logger
}

// Default returns the process-wide fallback logger.
func Default() logr.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLog
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) logr.Logger {
	if ctx != nil {
		if logger, err := logr.FromContext(ctx); err == nil {
			return logger
		}
	}
	return Default()
}

// IntoContext stores logger in ctx.
func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}
