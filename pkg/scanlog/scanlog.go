// Package scanlog provides the structured logger the detector kernel and
// report aggregator thread through as an explicit parameter. There is no
// package-level logger here and no init-time global configuration: per
// SPEC_FULL.md's "no global mutable state" design note, every caller must
// pass a *zap.Logger (or use Nop for tests/silent runs) rather than reach
// for a singleton.
package scanlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style JSON logger at the given level, suitable
// for embedding in a larger tool that wants machine-parseable log lines
// alongside the stdout marker contract (which must remain plain ASCII and
// untouched by logger formatting).
func New(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg.Build()
}

// NewDevelopment builds a human-readable console logger, for interactive
// use.
func NewDevelopment() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

// Nop returns a logger that discards everything, for callers (most unit
// tests) that don't want log output.
func Nop() *zap.Logger { return zap.NewNop() }

// Target returns the structured fields identifying which host/port/scheme a
// log line concerns.
func Target(scheme, host string, port int) []zap.Field {
	return []zap.Field{
		zap.String("scheme", scheme),
		zap.String("host", host),
		zap.Int("port", port),
	}
}
