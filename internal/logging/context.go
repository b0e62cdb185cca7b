package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSubject is the standardized structured logging key for subject identifiers.
	FieldSubject = "subject"
	// FieldRunID is the standardized structured logging key for preprocess run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for pipeline stages
	// (ingest, export, review).
	FieldStage = "stage"
)

type contextKey string

const (
	subjectKey contextKey = "subject"
	runIDKey   contextKey = "run_id"
	stageKey   contextKey = "stage"
)

// WithSubject annotates ctx with the subject being processed.
func WithSubject(ctx context.Context, subject string) context.Context {
	return withValue(ctx, subjectKey, subject)
}

// WithRunID annotates ctx with a preprocess run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return withValue(ctx, runIDKey, runID)
}

// WithStage annotates ctx with the current pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFromContext(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	fields := make([]slog.Attr, 0, 3)
	if subject, ok := stringFromContext(ctx, subjectKey); ok {
		fields = append(fields, slog.String(FieldSubject, subject))
	}
	if runID, ok := stringFromContext(ctx, runIDKey); ok {
		fields = append(fields, slog.String(FieldRunID, runID))
	}
	if stage, ok := stringFromContext(ctx, stageKey); ok {
		fields = append(fields, slog.String(FieldStage, stage))
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
