// Package log provides radgw's structured logging facade.
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by the standard
// library slog via a bridge handler that preserves the formatter/output
// pipeline, so output stays consistent across the codebase.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	)
//	l = l.With(log.Component("gateway"))
//	l.Info("worker pool started", log.Int("workers", 4))
//
// Use ApplyConfig to build a logger from a declarative Config (level and
// text/JSON format), typically fed from flags or RADGW_* environment
// variables.
package log
