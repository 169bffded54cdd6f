package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"playbridge/internal/formats"
	"playbridge/internal/logging"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

// enrichesMetadata reports whether the target shows per-item metadata that
// the pipeline should fill in. NewPipe resolves inside its own writer.
func enrichesMetadata(target string) bool {
	return target == formats.FreeTube
}

type enricher struct {
	resolver services.MetadataResolver
	logger   *slog.Logger
	cache    map[string]*playlist.Metadata
}

func newEnricher(resolver services.MetadataResolver, logger *slog.Logger) *enricher {
	return &enricher{
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "enricher"),
		cache:    make(map[string]*playlist.Metadata),
	}
}

// Apply resolves metadata for local items without a title and returns how
// many items gained one. Each URL is resolved at most once per run.
func (e *enricher) Apply(ctx context.Context, c *playlist.Collection) int {
	if e.resolver == nil || c == nil {
		return 0
	}
	enriched := 0
	for _, p := range c.Playlists {
		if p.Kind == playlist.KindRemote {
			continue
		}
		pctx := services.WithPlaylist(ctx, p.Name)
		for i := range p.Items {
			item := &p.Items[i]
			if item.HasTitle() {
				continue
			}
			resolved := e.lookup(pctx, item.URL)
			if resolved == nil {
				continue
			}
			merged := *resolved
			if item.Metadata != nil {
				merged.AddedAtMillis = item.Metadata.AddedAtMillis
				merged.ItemID = item.Metadata.ItemID
			}
			item.Metadata = &merged
			enriched++
		}
	}
	return enriched
}

func (e *enricher) lookup(ctx context.Context, url string) *playlist.Metadata {
	key := playlist.IdentityKey(url)
	if meta, ok := e.cache[key]; ok {
		return meta
	}
	meta, err := e.resolver.Resolve(ctx, url)
	if err == nil && (meta == nil || meta.Title == "") {
		err = errors.New("resolver returned no title")
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "metadata unavailable", "metadata_fallback",
			logging.String(logging.FieldURL, url),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the metadata resolver configuration"),
			logging.String(logging.FieldImpact, "item written without title"),
		)
		meta = nil
	}
	e.cache[key] = meta
	return meta
}
