package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchID identifies one RunBatch invocation.
	FieldBatchID = "batch_id"
	// FieldStage is the pipeline stage currently executing.
	FieldStage = "stage"
	// FieldClipID is the clip metadata identifier.
	FieldClipID = "clip_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey string

const (
	batchIDKey contextKey = "batch_id"
	stageKey   contextKey = "stage"
	clipIDKey  contextKey = "clip_id"
)

// WithBatchID annotates ctx with the batch correlation identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	return withString(ctx, batchIDKey, id)
}

// WithStage annotates ctx with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// WithClipID annotates ctx with the clip identifier.
func WithClipID(ctx context.Context, id string) context.Context {
	return withString(ctx, clipIDKey, id)
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	for _, pair := range []struct {
		key   contextKey
		field string
	}{
		{batchIDKey, FieldBatchID},
		{stageKey, FieldStage},
		{clipIDKey, FieldClipID},
	} {
		if v, ok := ctx.Value(pair.key).(string); ok && v != "" {
			fields = append(fields, slog.String(pair.field, v))
		}
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
	return logger.With(toArgs(fields)...)
}
