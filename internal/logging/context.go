package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// ContextWithLogger stores a logger in the context for downstream callers.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// WithContext returns the logger stored in ctx, falling back to the provided
// logger and finally to a nop logger.
func WithContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return NewNop()
}
