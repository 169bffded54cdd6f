package playlist_test

import (
	"reflect"
	"strings"
	"testing"

	"playbridge/internal/playlist"
)

func TestForEachItemVisitsCollectionThenItemOrder(t *testing.T) {
	var c playlist.Collection
	c.Append(playlist.NewPlaylist("one", "a", "b"))
	c.Append(playlist.NewPlaylist("two", "c"))
	c.Append(playlist.NewPlaylist("three"))

	var got []string
	c.ForEachItem(func(p *playlist.Playlist, index int, item playlist.Item) bool {
		got = append(got, p.Name+":"+item.URL)
		return true
	})
	want := []string{"one:a", "one:b", "two:c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected traversal: got %v want %v", got, want)
	}
}

func TestForEachItemStopsWhenVisitorReturnsFalse(t *testing.T) {
	var c playlist.Collection
	c.Append(playlist.NewPlaylist("one", "a", "b", "c"))

	visits := 0
	c.ForEachItem(func(*playlist.Playlist, int, playlist.Item) bool {
		visits++
		return visits < 2
	})
	if visits != 2 {
		t.Fatalf("expected traversal to stop after 2 visits, got %d", visits)
	}
}

func TestAppendKeepsDuplicateNames(t *testing.T) {
	var c playlist.Collection
	c.Append(playlist.NewPlaylist("dup", "a"))
	c.Append(playlist.NewPlaylist("dup", "b"))
	if c.Len() != 2 {
		t.Fatalf("expected duplicates to coexist, got %d playlists", c.Len())
	}
}

func TestUniqueLastWriteWinsAtFirstPosition(t *testing.T) {
	var c playlist.Collection
	c.Append(playlist.NewPlaylist("dup", "a"))
	c.Append(playlist.NewPlaylist("other", "x"))
	c.Append(playlist.NewPlaylist("dup", "b"))

	unique := c.Unique()
	if unique.Len() != 2 {
		t.Fatalf("expected 2 playlists, got %d", unique.Len())
	}
	if unique.Playlists[0].Name != "dup" || unique.Playlists[0].Items[0].URL != "b" {
		t.Fatalf("expected last dup to win at first position, got %+v", unique.Playlists[0])
	}
	if unique.Playlists[1].Name != "other" {
		t.Fatalf("unexpected second playlist %q", unique.Playlists[1].Name)
	}
	if c.Len() != 3 {
		t.Fatal("Unique must not modify the receiver")
	}
}

func TestFinalizeAssignsKinds(t *testing.T) {
	isRemote := func(u string) bool { return strings.Contains(u, "list=") }

	single := playlist.NewPlaylist("remote", "https://youtube.com/playlist?list=PL1")
	multi := playlist.NewPlaylist("mixed", "https://youtube.com/playlist?list=PL1", "https://youtu.be/abc")
	empty := playlist.NewPlaylist("empty")
	expanded := playlist.NewPlaylist("expanded", "https://youtube.com/watch?v=x&list=PL2")
	expanded.Expanded = true
	direct := playlist.NewPlaylist("direct", "https://youtu.be/abc")
	storedRemote := playlist.NewPlaylist("stored-remote", "https://soundcloud.com/artist/sets/album")
	storedRemote.Kind = playlist.KindRemote
	storedRemote.KindKnown = true
	storedLocal := playlist.NewPlaylist("stored-local", "https://youtube.com/watch?v=x&list=PL3")
	storedLocal.KindKnown = true

	c := &playlist.Collection{Playlists: []*playlist.Playlist{single, multi, empty, expanded, direct, storedRemote, storedLocal}}
	c.Finalize(isRemote)

	cases := map[string]playlist.Kind{
		"remote":   playlist.KindRemote,
		"mixed":    playlist.KindLocal,
		"empty":    playlist.KindLocal,
		"expanded": playlist.KindLocal,
		"direct":   playlist.KindLocal,

		"stored-remote": playlist.KindRemote,
		"stored-local":  playlist.KindLocal,
	}
	for _, p := range c.Playlists {
		if p.Kind != cases[p.Name] {
			t.Fatalf("playlist %q: got kind %v want %v", p.Name, p.Kind, cases[p.Name])
		}
	}
}
