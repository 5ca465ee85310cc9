package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTask is the standardized structured logging key for task identifiers ("platform/title").
	FieldTask = "task"
	// FieldProvider is the standardized structured logging key for artwork provider ids.
	FieldProvider = "provider"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldEventType tags records for machine filtering (task_start, provider_miss, ...).
	FieldEventType = "event_type"
)

type contextKey int

const (
	taskContextKey contextKey = iota
	providerContextKey
)

// WithTask stores a task label ("platform/title") on the context.
func WithTask(ctx context.Context, task string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, taskContextKey, task)
}

// WithProvider stores a provider id on the context.
func WithProvider(ctx context.Context, provider string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, providerContextKey, provider)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if task, ok := ctx.Value(taskContextKey).(string); ok && task != "" {
		fields = append(fields, slog.String(FieldTask, task))
	}
	if provider, ok := ctx.Value(providerContextKey).(string); ok && provider != "" {
		fields = append(fields, slog.String(FieldProvider, provider))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
