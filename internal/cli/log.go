// Package cli implements the linepart command-line interface.
//
// # Commands
//
//   - run: full pipeline from a graph file to partitions and artifacts
//   - coarsen: cluster stage only (transform, coarsen, embed)
//   - partition: balance stage only, on a given or sorted line
//   - generate: synthetic random and fat-tree graphs
//   - render: draw a saved result as DOT, SVG, PNG or PDF
//   - serve: HTTP API
//   - cache: inspect and clear the result cache
//
// # Logging
//
// All commands log to stderr through charmbracelet/log. --verbose (-v)
// enables debug output including per-round and per-pass lines; --quiet (-q)
// keeps only warnings. Loggers travel in the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logLevel maps the --verbose and --quiet flags to a level.
func logLevel(verbose, quiet bool) log.Level {
	switch {
	case verbose:
		return LogDebug
	case quiet:
		return LogWarn
	default:
		return LogInfo
	}
}

// progress logs completion of an operation with its elapsed time.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Generated 64 nodes (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// withLogger returns a new context carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return log.WithContext(ctx, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	return log.FromContext(ctx)
}
