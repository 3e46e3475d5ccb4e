package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID creates a new unique trace ID using UUID v4
func GenerateTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID ensures the context has a trace ID for log correlation. An
// active span's trace ID is used when there is one; otherwise a new ID is
// generated.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		return WithTraceID(ctx, traceID)
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// WithComponent creates a logger with a component field.
// A nil logger falls back to the default logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
