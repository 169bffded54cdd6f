package formats

import (
	"context"
	"encoding/json"
	"log/slog"

	"playbridge/internal/logging"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

type pipedDocument struct {
	Format    string           `json:"format"`
	Version   int              `json:"version"`
	Playlists *[]pipedPlaylist `json:"playlists"`
}

type pipedPlaylist struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Visibility string   `json:"visibility"`
	Videos     []string `json:"videos"`
}

type pipedAdapter struct {
	logger *slog.Logger
}

// NewPiped returns the adapter for Piped playlist exports.
func NewPiped(opts Options) Adapter {
	return &pipedAdapter{logger: logging.NewComponentLogger(opts.Logger, Piped)}
}

func (a *pipedAdapter) Name() string        { return Piped }
func (a *pipedAdapter) NeedsTemplate() bool { return false }
func (a *pipedAdapter) KeepsRemote() bool   { return false }

func (a *pipedAdapter) Decode(ctx context.Context, data []byte) (*playlist.Collection, error) {
	var doc pipedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrSourceFormat, Piped, "decode", "invalid JSON document", err)
	}
	if doc.Playlists == nil {
		return nil, services.SourceFormat(Piped, `missing "playlists" key`)
	}
	c := &playlist.Collection{}
	for _, p := range *doc.Playlists {
		c.Append(playlist.NewPlaylist(p.Name, p.Videos...))
	}
	logging.WithContext(ctx, a.logger).Debug("piped document decoded", logging.Int("playlists", c.Len()))
	return c, nil
}

func (a *pipedAdapter) Encode(_ context.Context, c *playlist.Collection, _ []byte) ([]byte, error) {
	playlists := make([]pipedPlaylist, 0, c.Len())
	for _, p := range c.Playlists {
		playlists = append(playlists, pipedPlaylist{
			Name:       p.Name,
			Type:       "playlist",
			Visibility: "private",
			Videos:     p.URLs(),
		})
	}
	return marshalCompact(pipedDocument{Format: "Piped", Version: 1, Playlists: &playlists})
}
