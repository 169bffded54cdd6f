package formats

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"playbridge/internal/archive"
	"playbridge/internal/logging"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

const (
	grayjayPlaylistsEntry = "stores/Playlists"
	grayjaySeparator      = ":::"
)

type grayjayAdapter struct {
	opts   Options
	logger *slog.Logger
}

// NewGrayjay returns the adapter for Grayjay export archives.
func NewGrayjay(opts Options) Adapter {
	return &grayjayAdapter{opts: opts, logger: logging.NewComponentLogger(opts.Logger, Grayjay)}
}

func (a *grayjayAdapter) Name() string        { return Grayjay }
func (a *grayjayAdapter) NeedsTemplate() bool { return true }
func (a *grayjayAdapter) KeepsRemote() bool   { return false }

func (a *grayjayAdapter) Decode(ctx context.Context, data []byte) (*playlist.Collection, error) {
	arc, err := archive.Read(data)
	if err != nil {
		return nil, err
	}
	if err := arc.Require(grayjayPlaylistsEntry); err != nil {
		return nil, err
	}
	raw, err := arc.Get(grayjayPlaylistsEntry)
	if err != nil {
		return nil, err
	}
	var elements []string
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, services.Wrap(services.ErrSourceFormat, Grayjay, "decode", grayjayPlaylistsEntry+" is not a JSON string array", err)
	}

	logger := logging.WithContext(ctx, a.logger)
	c := &playlist.Collection{}
	byName := make(map[string]*playlist.Playlist)
	for index, element := range elements {
		header, body, ok := strings.Cut(element, "\n")
		if !ok {
			logging.WarnWithContext(logger, "malformed playlist entry skipped", "grayjay_entry_malformed",
				logging.Int("index", index),
				logging.String("entry", element),
				logging.String(logging.FieldImpact, "entry is not converted"),
			)
			continue
		}
		// Names holding the separator or a newline do not survive.
		name, _, _ := strings.Cut(header, grayjaySeparator)
		p, seen := byName[name]
		if !seen {
			p = playlist.NewPlaylist(name)
			byName[name] = p
			c.Append(p)
		}
		for _, line := range strings.Split(body, "\n") {
			if url := strings.TrimSpace(line); url != "" {
				p.Items = append(p.Items, playlist.Item{URL: url})
			}
		}
	}
	return c, nil
}

func (a *grayjayAdapter) Encode(ctx context.Context, c *playlist.Collection, template []byte) ([]byte, error) {
	if err := requireTemplate(Grayjay, template); err != nil {
		return nil, err
	}
	arc, err := archive.Read(template)
	if err != nil {
		return nil, err
	}

	unique := c.Unique()
	elements := make([]string, 0, unique.ItemCount()+unique.Len())
	for _, p := range unique.Playlists {
		header := p.Name + grayjaySeparator + grayjayPlaylistID(p.Name) + "\n"
		if len(p.Items) == 0 {
			elements = append(elements, header)
			continue
		}
		for _, item := range p.Items {
			elements = append(elements, header+item.URL)
		}
	}
	store, err := marshalCompact(elements)
	if err != nil {
		return nil, err
	}
	arc.Set(grayjayPlaylistsEntry, store)

	if entry := a.opts.VideoCacheEntry; entry != "" {
		cache, err := marshalCompact(grayjayVideoCache(unique))
		if err != nil {
			return nil, err
		}
		arc.Set(entry, cache)
	}

	a.logger.Debug("grayjay store rebuilt",
		logging.Int("playlists", unique.Len()),
		logging.Int("entries", len(elements)),
	)
	return arc.Bytes()
}

// grayjayPlaylistID derives a stable id so re-imports update the same playlist.
func grayjayPlaylistID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}

type grayjayCachedVideo struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func grayjayVideoCache(c *playlist.Collection) map[string]grayjayCachedVideo {
	cache := make(map[string]grayjayCachedVideo)
	c.ForEachItem(func(_ *playlist.Playlist, _ int, item playlist.Item) bool {
		if id, ok := playlist.VideoID(item.URL); ok {
			if _, exists := cache[id]; !exists {
				cache[id] = grayjayCachedVideo{ID: id, URL: item.URL}
			}
		}
		return true
	})
	return cache
}
