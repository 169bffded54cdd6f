package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"playbridge/internal/pipeline"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
	"playbridge/internal/testsupport"
)

func TestDownloadSkipsExistingAndCountsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	out := filepath.Join(testsupport.BaseDir(cfg), "downloads")
	if err := os.MkdirAll(filepath.Join(out, "Road_Trip"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(out, "Road_Trip", "Known Song.mp3"), []byte("audio"))

	c := &playlist.Collection{}
	c.Append(&playlist.Playlist{Name: "Road/Trip", Items: []playlist.Item{
		{URL: "https://youtu.be/AAA", Metadata: &playlist.Metadata{Title: "Known Song"}},
		{URL: "https://youtu.be/BBB"},
		{URL: "https://youtu.be/CCC"},
	}})
	c.Append(&playlist.Playlist{Name: "Remote", Kind: playlist.KindRemote, Items: []playlist.Item{{URL: "https://www.youtube.com/playlist?list=PL1"}}})

	downloader := &testsupport.StubDownloader{Fail: map[string]bool{"https://youtu.be/CCC": true}}
	r := newRunner(t, cfg, pipeline.Collaborators{Downloader: downloader})
	report, err := r.Download(context.Background(), c, out)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	want := pipeline.DownloadReport{Downloaded: 1, Skipped: 1, Failed: 1}
	if *report != want {
		t.Fatalf("unexpected report: %+v", *report)
	}
	if len(downloader.Calls) != 2 {
		t.Fatalf("expected 2 download attempts, got %v", downloader.Calls)
	}
	if _, err := os.Stat(filepath.Join(out, "Road_Trip", "BBB.mp3")); err != nil {
		t.Fatalf("expected downloaded file: %v", err)
	}
}

func TestDownloadRequiresDownloader(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r := newRunner(t, cfg, pipeline.Collaborators{})
	_, err := r.Download(context.Background(), &playlist.Collection{}, t.TempDir())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
