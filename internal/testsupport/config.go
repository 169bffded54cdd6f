package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"playbridge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config with offline defaults: no metadata backend,
// no download throttle and a log file under a per-test temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Resolver.Backend = config.BackendNone
	cfgVal.Download.ThrottleSeconds = 0
	cfgVal.Logging.File = filepath.Join(base, "logs", "playbridge.log")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithExpandMode sets pipeline.expand_remote.
func WithExpandMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.ExpandRemote = mode
	}
}

// WithDedup enables cross-playlist de-duplication.
func WithDedup() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.Dedup = true
	}
}

// WithMaxDatabaseBytes lowers the NewPipe database ceiling.
func WithMaxDatabaseBytes(limit int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.MaxDatabaseBytes = limit
	}
}

// WithStubbedYtDlp writes a shell script named yt-dlp that prints stdout,
// points the resolver at it and selects the yt-dlp backend.
func WithStubbedYtDlp(stdout string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "yt-dlp")
		script := "#!/bin/sh\ncat <<'PLAYBRIDGE_EOF'\n" + stdout + "\nPLAYBRIDGE_EOF\n"
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub yt-dlp: %v", err)
		}
		b.cfg.Resolver.Backend = config.BackendYtDlp
		b.cfg.Resolver.YtDlpBinary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Logging.File))
}

// WithYtDlpBinary points resolver.ytdlp_binary at path without changing the
// backend.
func WithYtDlpBinary(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.YtDlpBinary = path
	}
}
