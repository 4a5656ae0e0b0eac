package eventstore

import (
	"context"
)

// Logger is the logging contract used by the engines and the circulation shell.
// *slog.Logger satisfies it.
//
//	Debug: SQL statements with timings
//	Info:  event counts, durations, concurrency conflicts
//	Warn:  non-critical issues like cleanup failures
//	Error: failures that abort an operation
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger is the context-aware variant of Logger, e.g. for handlers that
// correlate log lines with request-scoped values. *slog.Logger satisfies it as well.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
