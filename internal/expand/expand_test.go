package expand_test

import (
	"context"
	"errors"
	"testing"

	"playbridge/internal/expand"
	"playbridge/internal/logging"
	"playbridge/internal/playlist"
)

type fakeResolver struct {
	results map[string][]string
	err     error
	calls   int
}

func (f *fakeResolver) Expand(_ context.Context, url string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results[url], nil
}

func TestClassify(t *testing.T) {
	cases := []struct {
		url  string
		want expand.Class
	}{
		{"https://www.youtube.com/playlist?list=PL123", expand.RemoteCompound},
		{"https://www.youtube.com/watch?v=abc&list=PL123", expand.RemoteCompound},
		{"https://YOUTU.BE/abc?LIST=PL1", expand.RemoteCompound},
		{"https://www.youtube.com/playlist?id=PL9", expand.Direct},
		{"https://odysee.com/$/playlist/abc", expand.RemoteCompound},
		{"https://odysee.tv/@chan/playlist/xyz", expand.RemoteCompound},
		{"https://peertube.example.org/w/p/abc", expand.RemoteCompound},
		{"https://peertube.example.org/w/singlevideo", expand.RemoteCompound},
		{"https://www.youtube.com/watch?v=abc", expand.Direct},
		{"https://odysee.com/@chan/video:1", expand.Direct},
		{"https://vimeo.com/12345", expand.Direct},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			if got := expand.Classify(tc.url); got != tc.want {
				t.Fatalf("Classify(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestApplyExpandsSingleRemoteItem(t *testing.T) {
	remote := "https://www.youtube.com/playlist?list=PL1"
	resolver := &fakeResolver{results: map[string][]string{remote: {"https://youtu.be/a", "https://youtu.be/b"}}}
	c := &playlist.Collection{}
	c.Append(playlist.NewPlaylist("mix", remote))

	n := expand.New(resolver, logging.NewNop()).Apply(context.Background(), c)
	if n != 1 {
		t.Fatalf("expected 1 expansion, got %d", n)
	}
	p := c.Playlists[0]
	if !p.Expanded || len(p.Items) != 2 || p.Items[1].URL != "https://youtu.be/b" {
		t.Fatalf("unexpected playlist after expansion: %+v", p)
	}
	c.Finalize(expand.IsRemote)
	if p.Kind != playlist.KindLocal {
		t.Fatalf("expanded playlist must finalize as local, got %v", p.Kind)
	}
}

func TestApplyFollowsStoredKinds(t *testing.T) {
	set := "https://soundcloud.com/artist/sets/album"
	mixURL := "https://www.youtube.com/watch?v=abc&list=PL7"
	resolver := &fakeResolver{results: map[string][]string{
		set:    {"https://soundcloud.com/artist/one", "https://soundcloud.com/artist/two"},
		mixURL: {"https://youtu.be/x"},
	}}
	stored := playlist.NewPlaylist("album", set)
	stored.Kind = playlist.KindRemote
	stored.KindKnown = true
	local := playlist.NewPlaylist("single", mixURL)
	local.KindKnown = true
	c := &playlist.Collection{Playlists: []*playlist.Playlist{stored, local}}

	if n := expand.New(resolver, logging.NewNop()).Apply(context.Background(), c); n != 1 {
		t.Fatalf("expected only the stored remote playlist to expand, got %d", n)
	}
	if !stored.Expanded || len(stored.Items) != 2 {
		t.Fatalf("unexpected stored remote playlist: %+v", stored)
	}
	if local.Expanded || local.Items[0].URL != mixURL {
		t.Fatalf("stored local playlist must be left alone: %+v", local)
	}
}

func TestApplySkipsMultiItemPlaylists(t *testing.T) {
	resolver := &fakeResolver{}
	c := &playlist.Collection{}
	c.Append(playlist.NewPlaylist("mixed", "https://www.youtube.com/playlist?list=PL1", "https://youtu.be/x"))
	c.Append(playlist.NewPlaylist("direct", "https://youtu.be/y"))
	c.Append(playlist.NewPlaylist("empty"))

	if n := expand.New(resolver, logging.NewNop()).Apply(context.Background(), c); n != 0 {
		t.Fatalf("expected no expansions, got %d", n)
	}
	if resolver.calls != 0 {
		t.Fatalf("resolver must not be called, got %d calls", resolver.calls)
	}
}

func TestApplyKeepsURLWhenResolverFails(t *testing.T) {
	remote := "https://odysee.com/$/playlist/abc"
	resolver := &fakeResolver{err: errors.New("network down")}
	c := &playlist.Collection{}
	c.Append(playlist.NewPlaylist("od", remote))

	expand.New(resolver, logging.NewNop()).Apply(context.Background(), c)
	c.Finalize(expand.IsRemote)

	p := c.Playlists[0]
	if p.Expanded || len(p.Items) != 1 || p.Items[0].URL != remote {
		t.Fatalf("expected playlist untouched, got %+v", p)
	}
	if p.Kind != playlist.KindRemote {
		t.Fatalf("expected remote kind, got %v", p.Kind)
	}
}

func TestExpandWithoutResolverIsEmpty(t *testing.T) {
	if urls := expand.New(nil, nil).Expand(context.Background(), "https://youtube.com/playlist?list=PL"); len(urls) != 0 {
		t.Fatalf("expected empty result, got %v", urls)
	}
}
