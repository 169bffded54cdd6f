package expand

import (
	"context"
	"log/slog"

	"playbridge/internal/logging"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

// Expander replaces remote playlist references with their member videos.
type Expander struct {
	resolver services.PlaylistResolver
	logger   *slog.Logger
}

// New constructs an expander. A nil resolver makes every expansion a no-op.
func New(resolver services.PlaylistResolver, logger *slog.Logger) *Expander {
	return &Expander{
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "expander"),
	}
}

// Expand resolves a remote playlist URL into its member video URLs. Failures
// are logged and produce an empty result.
func (e *Expander) Expand(ctx context.Context, url string) []string {
	if e == nil || e.resolver == nil {
		return nil
	}
	urls, err := e.resolver.Expand(ctx, url)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "remote playlist expansion failed", "expansion_failed",
			logging.String(logging.FieldURL, url),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the playlist resolver and network access"),
			logging.String(logging.FieldImpact, "playlist kept as a remote reference"),
		)
		return nil
	}
	return urls
}

// Apply expands every playlist holding exactly one remote reference (a
// RemoteCompound URL, or a stored remote kind) and returns how many playlists
// were expanded. Playlists whose expansion yields
// nothing keep their URL.
func (e *Expander) Apply(ctx context.Context, c *playlist.Collection) int {
	if c == nil {
		return 0
	}
	expanded := 0
	for _, p := range c.Playlists {
		if !p.IsRemoteCandidate(IsRemote) {
			continue
		}
		urls := e.Expand(services.WithPlaylist(ctx, p.Name), p.Items[0].URL)
		if len(urls) == 0 {
			continue
		}
		items := make([]playlist.Item, 0, len(urls))
		for _, u := range urls {
			items = append(items, playlist.Item{URL: u})
		}
		p.Items = items
		p.Expanded = true
		expanded++
		e.logger.Debug("remote playlist expanded",
			logging.String(logging.FieldPlaylist, p.Name),
			logging.Int("videos", len(items)),
		)
	}
	return expanded
}
