package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// TraceIDKey is the attribute name used for request trace ids.
const TraceIDKey = "trace_id"

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOrDefault(ctx, slog.Default())
}

// FromContextOrDefault returns the logger stored in ctx, or fallback.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return fallback
}

// WithTraceID stores a logger tagged with traceID, derived from the logger
// already in ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(slog.String(TraceIDKey, traceID)))
}
