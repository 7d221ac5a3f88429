package lumen

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/lumen/engine"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for lumen and all its sub-packages.
// By default, lumen produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Engines pick up the logger when a session is created, so call SetLogger
// before New to capture engine initialization events.
//
// Log levels used by lumen:
//   - [slog.LevelDebug]: internal diagnostics (buffer sizes, pack timings)
//   - [slog.LevelInfo]: important lifecycle events (engine selected)
//   - [slog.LevelWarn]: non-fatal issues (release failures, device-info failures)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	lumen.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	lumen.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by lumen.
// Sub-packages and display sinks call this to share the same logger
// configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by engines that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to an engine if it implements the
// loggerSetter interface. Called from New so the engine backing a
// session always logs through the configured logger.
func propagateLogger(e engine.Engine, l *slog.Logger) {
	if ls, ok := e.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
