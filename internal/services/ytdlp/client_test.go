package ytdlp_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"playbridge/internal/services"
	"playbridge/internal/services/ytdlp"
)

type stubExecutor struct {
	out   string
	err   error
	block bool
	args  [][]string
}

func (s *stubExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	s.args = append(s.args, append([]string(nil), args...))
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []byte(s.out), s.err
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ytdlp.New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestResolveMapsVideoJSON(t *testing.T) {
	exec := &stubExecutor{out: `{"id":"AAA","title":" Song ","uploader":"Band","channel_id":"UC1",
		"channel_url":"https://www.youtube.com/channel/UC1","thumbnail":"https://i.ytimg.com/vi/AAA/hq.jpg",
		"duration":212.6,"view_count":42,"timestamp":1700000000}`}
	client, err := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	meta, err := client.Resolve(context.Background(), "https://youtu.be/AAA")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if meta.Title != "Song" || meta.Author != "Band" || meta.AuthorID != "UC1" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.AuthorURL != "https://www.youtube.com/channel/UC1" {
		t.Fatalf("expected channel url fallback, got %q", meta.AuthorURL)
	}
	if meta.DurationSeconds != 212 || meta.ViewCount != 42 || meta.PublishedAtMillis != 1700000000000 {
		t.Fatalf("unexpected numeric fields: %+v", meta)
	}
	args := strings.Join(exec.args[0], " ")
	if !strings.Contains(args, "-J --no-playlist") || !strings.HasSuffix(args, "https://youtu.be/AAA") {
		t.Fatalf("unexpected args: %q", args)
	}
}

func TestResolveWrapsExecutorFailure(t *testing.T) {
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(&stubExecutor{err: errors.New("exit status 1")}))
	_, err := client.Resolve(context.Background(), "https://youtu.be/AAA")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestResolveReportsTimeout(t *testing.T) {
	client, _ := ytdlp.New("yt-dlp",
		ytdlp.WithExecutor(&stubExecutor{block: true}),
		ytdlp.WithTimeout(10*time.Millisecond))
	_, err := client.Resolve(context.Background(), "https://youtu.be/AAA")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestExpandFlattensEntries(t *testing.T) {
	exec := &stubExecutor{out: `{"id":"PL1","title":"Mix","entries":[
		{"id":"AAA","url":"https://www.youtube.com/watch?v=AAA","ie_key":"Youtube"},
		{"id":"BBB","url":"BBB","ie_key":"Youtube"},
		{"id":"CCC","webpage_url":"https://www.youtube.com/watch?v=CCC"},
		{"id":"","url":""}
	]}`}
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec))

	urls, err := client.Expand(context.Background(), "https://www.youtube.com/playlist?list=PL1")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	want := []string{
		"https://www.youtube.com/watch?v=AAA",
		"https://www.youtube.com/watch?v=BBB",
		"https://www.youtube.com/watch?v=CCC",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Fatalf("unexpected urls: got %v want %v", urls, want)
	}
	if !strings.Contains(strings.Join(exec.args[0], " "), "--flat-playlist") {
		t.Fatalf("expected --flat-playlist, got %v", exec.args[0])
	}
}

func TestDownloadReturnsReportedPath(t *testing.T) {
	exec := &stubExecutor{out: "[info] noise\n/tmp/music/Song.mp3\n"}
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec), ytdlp.WithAudioFormat("mp3"))

	path, err := client.Download(context.Background(), "https://youtu.be/AAA", "/tmp/music")
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if path != "/tmp/music/Song.mp3" {
		t.Fatalf("unexpected path %q", path)
	}
	args := strings.Join(exec.args[0], " ")
	if !strings.Contains(args, "-x --audio-format mp3") {
		t.Fatalf("expected audio extraction args, got %q", args)
	}
}

func TestDownloadKeepsNativeStreamForMP4(t *testing.T) {
	exec := &stubExecutor{out: "/tmp/music/Song.m4a\n"}
	client, _ := ytdlp.New("yt-dlp", ytdlp.WithExecutor(exec), ytdlp.WithAudioFormat("mp4"))
	if _, err := client.Download(context.Background(), "https://youtu.be/AAA", "/tmp/music"); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	args := strings.Join(exec.args[0], " ")
	if strings.Contains(args, "-x") || !strings.Contains(args, "bestaudio[ext=m4a]") {
		t.Fatalf("unexpected args for mp4: %q", args)
	}
}
