// Package logging assembles structured slog loggers and formatting helpers used
// across playbridge.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, steps, and playlist names. Per-item warnings go through
// WarnWithContext so every degraded item reports what happened, what it cost,
// and what to try next. The package also provides a no-op logger for tests.
package logging
