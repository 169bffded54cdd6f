package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Resolver selects and tunes the external metadata/playlist resolver.
type Resolver struct {
	// Backend is one of "ytdlp", "html", or "none".
	Backend        string `toml:"backend"`
	YtDlpBinary    string `toml:"ytdlp_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Pipeline contains the default conversion steps.
type Pipeline struct {
	// ExpandRemote is "auto" (expand unless the target stores remote
	// playlists natively), "always", or "never".
	ExpandRemote string `toml:"expand_remote"`
	Dedup        bool   `toml:"dedup"`
}

// Archive contains limits applied when reading backup archives.
type Archive struct {
	MaxDatabaseBytes int64 `toml:"max_database_bytes"`
}

// Grayjay contains Grayjay export options.
type Grayjay struct {
	// VideoCacheEntry names an optional archive entry that receives minimal
	// per-video identity records. Empty disables it.
	VideoCacheEntry string `toml:"video_cache_entry"`
}

// Download contains options for the download command.
type Download struct {
	AudioFormat     string `toml:"audio_format"`
	ThrottleSeconds int    `toml:"throttle_seconds"`
}

// Config encapsulates all configuration values for playbridge.
type Config struct {
	Logging  Logging  `toml:"logging"`
	Resolver Resolver `toml:"resolver"`
	Pipeline Pipeline `toml:"pipeline"`
	Archive  Archive  `toml:"archive"`
	Grayjay  Grayjay  `toml:"grayjay"`
	Download Download `toml:"download"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/playbridge/config.toml")
}

// Load locates, parses, and validates a configuration file. Missing files are
// not an error; defaults are used and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("playbridge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ResolverTimeout returns the per-call timeout for external resolvers.
func (c *Config) ResolverTimeout() time.Duration {
	return time.Duration(c.Resolver.TimeoutSeconds) * time.Second
}

// DownloadThrottle returns the pause applied after each download.
func (c *Config) DownloadThrottle() time.Duration {
	return time.Duration(c.Download.ThrottleSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
