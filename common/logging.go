package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// logger holds the active slog.Logger for the whole engine. The default is a
// no-op logger so the library stays silent unless the host application opts in.
var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// SetLogger installs l as the engine-wide logger. Passing nil restores the
// default no-op logger. Safe for concurrent use.
//
// Parameters:
//   - l: the logger to install, or nil to silence the engine
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	logger.Store(l)
}

// Logger returns the currently installed engine logger.
//
// Returns:
//   - *slog.Logger: the active logger, never nil
func Logger() *slog.Logger {
	return logger.Load()
}

// nopHandler is a slog.Handler that discards every record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
