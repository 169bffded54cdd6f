package logging

import (
	"context"
	"log/slog"

	"playbridge/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for conversion run identifiers.
	FieldRunID = "run_id"
	// FieldStep is the standardized structured logging key for pipeline step names.
	FieldStep = "step"
	// FieldPlaylist is the standardized structured logging key for playlist names.
	FieldPlaylist = "playlist"
	// FieldURL is the standardized structured logging key for video or playlist URLs.
	FieldURL = "url"
	// FieldFormat is the standardized structured logging key for format identifiers.
	FieldFormat = "format"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if step, ok := services.StepFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStep, step))
	}
	if name, ok := services.PlaylistFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPlaylist, name))
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
