package deps

import (
	"os"
	"path/filepath"
	"testing"

	"playbridge/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for empty command: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestRequirementsFollowBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Resolver.YtDlpBinary = "/opt/yt-dlp"

	reqs := Requirements(&cfg)
	if reqs[0].Command != "/opt/yt-dlp" || reqs[0].Optional {
		t.Fatalf("expected required yt-dlp for the ytdlp backend, got %#v", reqs[0])
	}

	cfg.Resolver.Backend = config.BackendNone
	if reqs = Requirements(&cfg); !reqs[0].Optional {
		t.Fatal("expected yt-dlp to be optional without the ytdlp backend")
	}
	if !reqs[1].Optional {
		t.Fatal("ffmpeg must stay optional")
	}
}
