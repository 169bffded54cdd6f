package formats_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"playbridge/internal/formats"
	"playbridge/internal/playlist"
)

const freetubeSample = `{"playlistName":"Favorites","protected":false,"description":"","videos":[],"_id":"favorites","createdAt":1,"lastUpdatedAt":1}
{"playlistName":"Watch Later","videos":[{"videoId":"WL1","title":"Later","timeAdded":5}],"_id":"watchLater"}

this line is not json
{"playlistName":"Music","videos":[{"videoId":"AAA","title":"Song","author":"Band","authorId":"UC1","lengthSeconds":"212","published":1600000000000,"timeAdded":1700000000001,"playlistItemId":"item-1","type":"video"},{"title":"no id"},{"videoId":"BBB","lengthSeconds":null,"published":null}],"_id":"ft-playlist--x"}
`

func TestFreeTubeDecode(t *testing.T) {
	c, err := adapter(t, newRegistry(), formats.FreeTube).Decode(context.Background(), []byte(freetubeSample))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got := names(c); strings.Join(got, ",") != "Watch Later,Music" {
		t.Fatalf("expected empty Favorites to be skipped, got %v", got)
	}
	music := c.Playlists[1]
	if len(music.Items) != 2 {
		t.Fatalf("expected video without id to be skipped, got %d items", len(music.Items))
	}
	first := music.Items[0]
	if first.URL != "https://www.youtube.com/watch?v=AAA" {
		t.Fatalf("unexpected url %q", first.URL)
	}
	want := playlist.Metadata{
		Title: "Song", Author: "Band", AuthorID: "UC1", DurationSeconds: 212,
		PublishedAtMillis: 1600000000000, AddedAtMillis: 1700000000001, ItemID: "item-1",
	}
	if *first.Metadata != want {
		t.Fatalf("unexpected metadata: %+v", *first.Metadata)
	}
}

type freetubeLine struct {
	PlaylistName  string `json:"playlistName"`
	ID            string `json:"_id"`
	CreatedAt     int64  `json:"createdAt"`
	LastUpdatedAt int64  `json:"lastUpdatedAt"`
	Videos        []struct {
		VideoID        string `json:"videoId"`
		Title          string `json:"title"`
		Published      *int64 `json:"published"`
		TimeAdded      int64  `json:"timeAdded"`
		PlaylistItemID string `json:"playlistItemId"`
		Type           string `json:"type"`
	} `json:"videos"`
}

func TestFreeTubeEncode(t *testing.T) {
	c := &playlist.Collection{}
	c.Append(playlist.NewPlaylist("Favorites"))
	c.Append(playlist.NewPlaylist("Watch Later", "https://youtu.be/WL1"))
	c.Append(&playlist.Playlist{Name: "Mixed", Items: []playlist.Item{
		{URL: "https://www.youtube.com/watch?v=AAA&list=PL", Metadata: &playlist.Metadata{Title: "Rock & Roll", AddedAtMillis: 1700000000500, ItemID: "keep-me"}},
		{URL: "https://odysee.com/@chan/video:1"},
	}})

	data, err := adapter(t, newRegistry(), formats.FreeTube).Encode(context.Background(), c, nil)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(string(data), `"title":"Rock & Roll"`) {
		t.Fatalf("output must not escape ampersands: %s", data)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected empty Favorites to be omitted, got %d lines:\n%s", len(lines), data)
	}

	var watchLater, mixed freetubeLine
	if err := json.Unmarshal([]byte(lines[0]), &watchLater); err != nil {
		t.Fatalf("decode line 1: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &mixed); err != nil {
		t.Fatalf("decode line 2: %v", err)
	}
	if watchLater.ID != "watchLater" {
		t.Fatalf("unexpected sentinel id %q", watchLater.ID)
	}
	if !strings.HasPrefix(mixed.ID, "ft-playlist--") || len(mixed.ID) != len("ft-playlist--")+36 {
		t.Fatalf("unexpected playlist id %q", mixed.ID)
	}
	if len(mixed.Videos) != 1 {
		t.Fatalf("expected non-YouTube item to be dropped, got %d videos", len(mixed.Videos))
	}
	video := mixed.Videos[0]
	if video.VideoID != "AAA" || video.PlaylistItemID != "keep-me" || video.Type != "video" || video.Published != nil {
		t.Fatalf("unexpected video: %+v", video)
	}
	if video.TimeAdded != 1700000000500 || mixed.LastUpdatedAt != 1700000000500 {
		t.Fatalf("unexpected timestamps: video %d playlist %d", video.TimeAdded, mixed.LastUpdatedAt)
	}
	if mixed.CreatedAt != fixedNow.UnixMilli() {
		t.Fatalf("expected createdAt from clock, got %d", mixed.CreatedAt)
	}
	if watchLater.Videos[0].TimeAdded != fixedNow.UnixMilli() || watchLater.Videos[0].PlaylistItemID == "" {
		t.Fatalf("expected generated item fields, got %+v", watchLater.Videos[0])
	}
}
