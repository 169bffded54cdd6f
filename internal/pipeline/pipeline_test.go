package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"playbridge/internal/config"
	"playbridge/internal/formats"
	"playbridge/internal/logging"
	"playbridge/internal/pipeline"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
	"playbridge/internal/services/webmeta"
	"playbridge/internal/services/ytdlp"
	"playbridge/internal/testsupport"
)

const remoteList = "https://www.youtube.com/playlist?list=PL1"

const sourceCSV = `Mix,"[""` + remoteList + `""]"
Faves,"[""https://youtu.be/AAA"",""https://youtu.be/CCC""]"
`

func newRunner(t *testing.T, cfg *config.Config, collab pipeline.Collaborators) *pipeline.Runner {
	t.Helper()
	r, err := pipeline.New(cfg, logging.NewNop(),
		pipeline.WithCollaborators(collab),
		pipeline.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	)
	if err != nil {
		t.Fatalf("pipeline.New returned error: %v", err)
	}
	return r
}

func expandingResolver() *testsupport.StubResolver {
	stub := testsupport.NewStubResolver()
	stub.Playlists[remoteList] = []string{"https://www.youtube.com/watch?v=AAA", "https://www.youtube.com/watch?v=BBB"}
	return stub
}

func urlsByName(t *testing.T, c *playlist.Collection) map[string][]string {
	t.Helper()
	out := make(map[string][]string, c.Len())
	for _, p := range c.Playlists {
		out[p.Name] = p.URLs()
	}
	return out
}

func TestConvertExpandsAndDeduplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDedup())
	dir := testsupport.BaseDir(cfg)
	source := testsupport.WriteFile(t, filepath.Join(dir, "in.csv"), []byte(sourceCSV))
	dest := filepath.Join(dir, "out", "piped.json")
	stub := expandingResolver()

	r := newRunner(t, cfg, pipeline.Collaborators{Metadata: stub, Playlists: stub})
	report, err := r.Convert(context.Background(), pipeline.Request{SourcePath: source, DestPath: dest})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if report.SourceFormat != formats.CSV || report.TargetFormat != formats.Piped {
		t.Fatalf("unexpected formats: %s -> %s", report.SourceFormat, report.TargetFormat)
	}
	if report.Expanded != 1 || report.DuplicatesRemoved != 1 || report.Items != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.RunID == "" || report.OutputBytes == 0 {
		t.Fatalf("expected run id and output size, got %+v", report)
	}

	c, name, err := r.Load(context.Background(), dest, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if name != formats.Piped {
		t.Fatalf("expected piped detection, got %q", name)
	}
	want := map[string][]string{
		"Mix":   {"https://www.youtube.com/watch?v=AAA", "https://www.youtube.com/watch?v=BBB"},
		"Faves": {"https://youtu.be/CCC"},
	}
	if got := urlsByName(t, c); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected output:\n got %v\nwant %v", got, want)
	}
	if _, err := os.Stat(dest + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err %v", err)
	}
}

func TestConvertKeepsRemoteForNewPipe(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.BaseDir(cfg)
	source := testsupport.WriteFile(t, filepath.Join(dir, "in.csv"), []byte(sourceCSV))
	template := testsupport.WriteFile(t, filepath.Join(dir, "template.zip"), testsupport.NewPipeTemplate(t))
	dest := filepath.Join(dir, "NewPipeData.zip")
	stub := expandingResolver()

	r := newRunner(t, cfg, pipeline.Collaborators{Metadata: stub, Playlists: stub})
	report, err := r.Convert(context.Background(), pipeline.Request{SourcePath: source, TemplatePath: template, DestPath: dest})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if report.TargetFormat != formats.NewPipe || report.Expanded != 0 || report.RemotePlaylists != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if stub.CallCount(remoteList) != 0 {
		t.Fatal("remote playlist must not be expanded for NewPipe in auto mode")
	}

	c, _, err := r.Load(context.Background(), dest, formats.NewPipe)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Len() != 2 || c.Playlists[1].Kind != playlist.KindRemote || c.Playlists[1].Items[0].URL != remoteList {
		t.Fatalf("expected remote playlist preserved, got %+v", c.Playlists)
	}
}

func TestConvertNewPipeRoundTripKeepsStoredKinds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.BaseDir(cfg)
	const set = "https://soundcloud.com/artist/sets/album"
	const mix = "https://www.youtube.com/watch?v=AAA&list=PL9"

	c := &playlist.Collection{}
	c.Append(playlist.NewPlaylist("Single", mix))
	album := playlist.NewPlaylist("Album", set)
	album.Kind = playlist.KindRemote
	c.Append(album)
	adapter, err := formats.NewRegistry(formats.Options{Logger: logging.NewNop()}).Lookup(formats.NewPipe)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	backup, err := adapter.Encode(context.Background(), c, testsupport.NewPipeTemplate(t))
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	source := testsupport.WriteFile(t, filepath.Join(dir, "source.zip"), backup)
	template := testsupport.WriteFile(t, filepath.Join(dir, "template.zip"), testsupport.NewPipeTemplate(t))
	dest := filepath.Join(dir, "NewPipeData.zip")
	stub := testsupport.NewStubResolver()

	r := newRunner(t, cfg, pipeline.Collaborators{Metadata: stub, Playlists: stub})
	report, err := r.Convert(context.Background(), pipeline.Request{
		SourcePath: source, TemplatePath: template, DestPath: dest, To: formats.NewPipe,
	})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if report.RemotePlaylists != 1 || report.Expanded != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	got, _, err := r.Load(context.Background(), dest, formats.NewPipe)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 playlists, got %d", got.Len())
	}
	single, remote := got.Playlists[0], got.Playlists[1]
	if single.Name != "Single" || single.Kind != playlist.KindLocal || single.Items[0].URL != mix {
		t.Fatalf("expected local playlist preserved, got %+v", single)
	}
	if remote.Name != "Album" || remote.Kind != playlist.KindRemote || remote.Items[0].URL != set {
		t.Fatalf("expected remote playlist preserved, got %+v", remote)
	}
}

func TestConvertExpandFlagOverridesConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithExpandMode(config.ExpandAlways))
	dir := testsupport.BaseDir(cfg)
	source := testsupport.WriteFile(t, filepath.Join(dir, "in.csv"), []byte(sourceCSV))
	dest := filepath.Join(dir, "out.csv")
	stub := expandingResolver()
	noExpand := false

	r := newRunner(t, cfg, pipeline.Collaborators{Playlists: stub})
	report, err := r.Convert(context.Background(), pipeline.Request{SourcePath: source, DestPath: dest, Expand: &noExpand})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if report.Expanded != 0 || len(stub.Calls) != 0 {
		t.Fatalf("expected no expansion, got %+v calls %v", report, stub.Calls)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != sourceCSV {
		t.Fatalf("expected CSV to round trip unchanged:\n%s", data)
	}
}

func TestConvertEnrichesFreeTubeTitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.BaseDir(cfg)
	source := testsupport.WriteFile(t, filepath.Join(dir, "in.csv"),
		[]byte(`Faves,"[""https://youtu.be/AAA"", ""https://youtu.be/BBB"", ""https://youtu.be/AAA""]"`+"\n"))
	dest := filepath.Join(dir, "playlists.db")
	stub := testsupport.NewStubResolver()
	stub.Metadata["https://youtu.be/AAA"] = &playlist.Metadata{Title: "Song A", Author: "Band"}
	stub.Fail["https://youtu.be/BBB"] = true

	r := newRunner(t, cfg, pipeline.Collaborators{Metadata: stub})
	report, err := r.Convert(context.Background(), pipeline.Request{SourcePath: source, DestPath: dest})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if report.TargetFormat != formats.FreeTube || report.Enriched != 2 || report.Warnings != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if stub.CallCount("https://youtu.be/AAA") != 1 {
		t.Fatalf("expected one lookup per URL, got %d", stub.CallCount("https://youtu.be/AAA"))
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var record struct {
		Videos []struct {
			VideoID string `json:"videoId"`
			Title   string `json:"title"`
		} `json:"videos"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(record.Videos) != 3 || record.Videos[0].Title != "Song A" || record.Videos[1].Title != "" {
		t.Fatalf("unexpected videos: %+v", record.Videos)
	}
}

func TestConvertFailuresWriteNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.BaseDir(cfg)
	source := testsupport.WriteFile(t, filepath.Join(dir, "in.csv"), []byte(sourceCSV))

	cases := []struct {
		name   string
		req    pipeline.Request
		marker error
	}{
		{"missing source", pipeline.Request{SourcePath: filepath.Join(dir, "nope.csv"), DestPath: filepath.Join(dir, "a.json")}, services.ErrUsage},
		{"missing template", pipeline.Request{SourcePath: source, DestPath: filepath.Join(dir, "b.zip"), To: formats.Grayjay}, services.ErrUsage},
		{"unknown target", pipeline.Request{SourcePath: source, DestPath: filepath.Join(dir, "c.txt")}, services.ErrUsage},
		{"bad source", pipeline.Request{SourcePath: source, DestPath: filepath.Join(dir, "d.json"), From: formats.Piped}, services.ErrSourceFormat},
	}
	r := newRunner(t, cfg, pipeline.Collaborators{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Convert(context.Background(), tc.req)
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
			if _, statErr := os.Stat(tc.req.DestPath); !os.IsNotExist(statErr) {
				t.Fatalf("expected no output at %s", tc.req.DestPath)
			}
		})
	}
}

func TestConvertRefusesLockedDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.BaseDir(cfg)
	source := testsupport.WriteFile(t, filepath.Join(dir, "in.csv"), []byte(sourceCSV))
	dest := filepath.Join(dir, "out.json")

	held := flock.New(dest + ".lock")
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = held.Unlock() }()

	r := newRunner(t, cfg, pipeline.Collaborators{})
	_, err := r.Convert(context.Background(), pipeline.Request{SourcePath: source, DestPath: dest})
	if !errors.Is(err, services.ErrUsage) {
		t.Fatalf("expected usage error for locked destination, got %v", err)
	}
}

func TestConvertWithStubbedYtDlp(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedYtDlp(
		`{"entries":[{"id":"AAA","ie_key":"Youtube"},{"url":"https://www.youtube.com/watch?v=BBB"}]}`))
	dir := testsupport.BaseDir(cfg)
	source := testsupport.WriteFile(t, filepath.Join(dir, "in.csv"), []byte(`Mix,"[""`+remoteList+`""]"`+"\n"))
	dest := filepath.Join(dir, "out.json")

	r, err := pipeline.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("pipeline.New returned error: %v", err)
	}
	report, err := r.Convert(context.Background(), pipeline.Request{SourcePath: source, DestPath: dest})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if report.Expanded != 1 || report.Items != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestCollaboratorsFromConfig(t *testing.T) {
	cfg := config.Default()

	collab, err := pipeline.CollaboratorsFromConfig(&cfg)
	if err != nil {
		t.Fatalf("CollaboratorsFromConfig returned error: %v", err)
	}
	if _, ok := collab.Metadata.(*ytdlp.Client); !ok {
		t.Fatalf("expected yt-dlp metadata resolver, got %T", collab.Metadata)
	}

	cfg.Resolver.Backend = config.BackendHTML
	if collab, err = pipeline.CollaboratorsFromConfig(&cfg); err != nil {
		t.Fatalf("CollaboratorsFromConfig returned error: %v", err)
	}
	if _, ok := collab.Metadata.(*webmeta.Resolver); !ok {
		t.Fatalf("expected html metadata resolver, got %T", collab.Metadata)
	}

	cfg.Resolver.Backend = config.BackendNone
	if collab, err = pipeline.CollaboratorsFromConfig(&cfg); err != nil {
		t.Fatalf("CollaboratorsFromConfig returned error: %v", err)
	}
	if collab.Metadata != nil || collab.Playlists != nil || collab.Downloader == nil {
		t.Fatalf("unexpected collaborators for backend none: %+v", collab)
	}
}
