// Package types holds the logging and source-position helpers shared by
// the internal mibtree packages.
package types

import (
	"context"
	"log/slog"
)

// LevelTrace sits below slog.LevelDebug. Per-token, per-link and
// per-round messages are logged at this level.
const LevelTrace = slog.LevelDebug - 4

// Logger is embedded by the lexer, extractor, resolver and store. The
// zero value discards everything.
type Logger struct {
	L *slog.Logger
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.L != nil && l.L.Enabled(context.Background(), level)
}

// Log writes msg at level when enabled.
func (l *Logger) Log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.Enabled(level) {
		l.L.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

// TraceEnabled guards attribute construction in hot loops.
func (l *Logger) TraceEnabled() bool {
	return l.Enabled(LevelTrace)
}

// Trace writes msg at LevelTrace.
func (l *Logger) Trace(msg string, attrs ...slog.Attr) {
	l.Log(LevelTrace, msg, attrs...)
}

// Component tags logger with a component attribute. A nil logger stays
// nil so disabled logging costs nothing downstream.
func Component(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("component", component))
}

// ByteOffset is a position in module source text.
type ByteOffset uint32

// Span is the half-open byte range [Start, End) of a token or fragment.
type Span struct {
	Start ByteOffset
	End   ByteOffset
}

// NewSpan returns the span [start, end).
func NewSpan(start, end ByteOffset) Span {
	return Span{Start: start, End: end}
}
