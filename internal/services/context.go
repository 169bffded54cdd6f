package services

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	stepKey     contextKey = "step"
	playlistKey contextKey = "playlist"
)

// WithRunID annotates context with the conversion run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStep annotates context with the pipeline step name.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the step name if present.
func StepFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stepKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithPlaylist annotates context with the playlist currently being processed.
func WithPlaylist(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, playlistKey, name)
}

// PlaylistFromContext returns the playlist name if present.
func PlaylistFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(playlistKey).(string)
	return v, ok
}
