// Package obslog builds the *zap.SugaredLogger instances injected into the
// store's components. The engine and its subsystems take a logger through
// their Config structs rather than reaching for a package-level global, so
// callers embedding the store can route its logs alongside their own.
package obslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile sugared logger: JSON encoding, ISO8601
// timestamps, level from the given name ("debug", "info", "warn", "error").
func New(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}

// Noop returns a sugared logger that discards everything. Useful as a
// Config default so components never have to nil-check their logger.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
