package formats

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"playbridge/internal/logging"
	"playbridge/internal/playlist"
)

// Sentinel playlists FreeTube creates on its own.
const (
	freetubeFavorites  = "Favorites"
	freetubeWatchLater = "Watch Later"
)

var freetubeSentinelIDs = map[string]string{
	freetubeFavorites:  "favorites",
	freetubeWatchLater: "watchLater",
}

type freetubeRecord struct {
	PlaylistName  string          `json:"playlistName"`
	Protected     bool            `json:"protected"`
	Description   string          `json:"description"`
	Videos        []freetubeVideo `json:"videos"`
	ID            string          `json:"_id"`
	CreatedAt     int64           `json:"createdAt"`
	LastUpdatedAt int64           `json:"lastUpdatedAt"`
}

type freetubeVideo struct {
	VideoID        string   `json:"videoId"`
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	AuthorID       string   `json:"authorId"`
	LengthSeconds  flexInt  `json:"lengthSeconds"`
	Published      *flexInt `json:"published"`
	TimeAdded      flexInt  `json:"timeAdded"`
	PlaylistItemID string   `json:"playlistItemId"`
	Type           string   `json:"type"`
}

// flexInt accepts JSON numbers, numeric strings and null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type freetubeAdapter struct {
	opts   Options
	logger *slog.Logger
}

// NewFreeTube returns the adapter for FreeTube's line-delimited playlists.db.
func NewFreeTube(opts Options) Adapter {
	return &freetubeAdapter{opts: opts, logger: logging.NewComponentLogger(opts.Logger, FreeTube)}
}

func (a *freetubeAdapter) Name() string        { return FreeTube }
func (a *freetubeAdapter) NeedsTemplate() bool { return false }
func (a *freetubeAdapter) KeepsRemote() bool   { return false }

func isFreeTubeSentinel(name string) bool {
	_, ok := freetubeSentinelIDs[name]
	return ok
}

func (a *freetubeAdapter) Decode(ctx context.Context, data []byte) (*playlist.Collection, error) {
	logger := logging.WithContext(ctx, a.logger)
	c := &playlist.Collection{}
	for lineNo, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var record freetubeRecord
		if err := json.Unmarshal(line, &record); err != nil {
			logging.WarnWithContext(logger, "unparsable record skipped", "freetube_record_invalid",
				logging.Int("line", lineNo+1),
				logging.Error(err),
				logging.String(logging.FieldImpact, "playlist on this line is not converted"),
			)
			continue
		}
		p := &playlist.Playlist{Name: record.PlaylistName, Items: make([]playlist.Item, 0, len(record.Videos))}
		for _, video := range record.Videos {
			if strings.TrimSpace(video.VideoID) == "" {
				logging.WarnWithContext(logger, "video without id skipped", "freetube_video_invalid",
					logging.String(logging.FieldPlaylist, record.PlaylistName),
					logging.String("title", video.Title),
				)
				continue
			}
			meta := &playlist.Metadata{
				Title:           video.Title,
				Author:          video.Author,
				AuthorID:        video.AuthorID,
				DurationSeconds: int64(video.LengthSeconds),
				AddedAtMillis:   int64(video.TimeAdded),
				ItemID:          video.PlaylistItemID,
			}
			if video.Published != nil {
				meta.PublishedAtMillis = int64(*video.Published)
			}
			p.Items = append(p.Items, playlist.Item{URL: playlist.WatchURL(video.VideoID), Metadata: meta})
		}
		if isFreeTubeSentinel(p.Name) && len(p.Items) == 0 {
			continue
		}
		c.Append(p)
	}
	return c, nil
}

func (a *freetubeAdapter) Encode(ctx context.Context, c *playlist.Collection, _ []byte) ([]byte, error) {
	logger := logging.WithContext(ctx, a.logger)
	now := a.opts.now().UnixMilli()
	var out bytes.Buffer
	for _, p := range c.Playlists {
		record := freetubeRecord{
			PlaylistName:  p.Name,
			Videos:        make([]freetubeVideo, 0, len(p.Items)),
			CreatedAt:     now,
			LastUpdatedAt: now,
		}
		var latest int64
		for _, item := range p.Items {
			id, ok := playlist.VideoID(item.URL)
			if !ok {
				logging.WarnWithContext(logger, "non-YouTube item dropped", "freetube_item_unsupported",
					logging.String(logging.FieldPlaylist, p.Name),
					logging.String(logging.FieldURL, item.URL),
					logging.String(logging.FieldErrorHint, "FreeTube playlists only hold YouTube videos"),
					logging.String(logging.FieldImpact, "item missing from the FreeTube playlist"),
				)
				continue
			}
			video := freetubeVideoFor(id, item, now)
			latest = max(latest, int64(video.TimeAdded))
			record.Videos = append(record.Videos, video)
		}
		if latest > 0 {
			record.LastUpdatedAt = latest
		}
		if sentinelID, ok := freetubeSentinelIDs[p.Name]; ok {
			if len(record.Videos) == 0 {
				continue
			}
			record.ID = sentinelID
		} else {
			record.ID = "ft-playlist--" + uuid.NewString()
		}
		line, err := marshalCompact(record)
		if err != nil {
			return nil, err
		}
		out.Write(line)
		out.WriteByte('\n')
	}
	return out.Bytes(), nil
}

func freetubeVideoFor(id string, item playlist.Item, now int64) freetubeVideo {
	video := freetubeVideo{VideoID: id, Type: "video", TimeAdded: flexInt(now)}
	if meta := item.Metadata; meta != nil {
		video.Title = meta.Title
		video.Author = meta.Author
		video.AuthorID = meta.AuthorID
		video.LengthSeconds = flexInt(meta.DurationSeconds)
		if meta.PublishedAtMillis > 0 {
			published := flexInt(meta.PublishedAtMillis)
			video.Published = &published
		}
		if meta.AddedAtMillis > 0 {
			video.TimeAdded = flexInt(meta.AddedAtMillis)
		}
		video.PlaylistItemID = meta.ItemID
	}
	if video.PlaylistItemID == "" {
		video.PlaylistItemID = uuid.NewString()
	}
	return video
}
