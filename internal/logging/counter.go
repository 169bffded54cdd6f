package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Counter tallies warning records emitted through a logger returned by
// CountWarnings.
type Counter struct {
	warnings atomic.Int64
}

// Warnings returns the number of warning records observed so far.
func (c *Counter) Warnings() int {
	if c == nil {
		return 0
	}
	return int(c.warnings.Load())
}

// CountWarnings wraps logger so that every WARN record is counted, including
// records the underlying handler filters out by level.
func CountWarnings(logger *slog.Logger) (*slog.Logger, *Counter) {
	if logger == nil {
		logger = NewNop()
	}
	counter := &Counter{}
	return slog.New(&countingHandler{next: logger.Handler(), counter: counter}), counter
}

type countingHandler struct {
	next    slog.Handler
	counter *Counter
}

func (h *countingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level == slog.LevelWarn || h.next.Enabled(ctx, level)
}

func (h *countingHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level == slog.LevelWarn {
		h.counter.warnings.Add(1)
	}
	if !h.next.Enabled(ctx, record.Level) {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *countingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &countingHandler{next: h.next.WithAttrs(attrs), counter: h.counter}
}

func (h *countingHandler) WithGroup(name string) slog.Handler {
	return &countingHandler{next: h.next.WithGroup(name), counter: h.counter}
}
