package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var supportedAudioFormats = map[string]struct{}{
	"mp3":  {},
	"wav":  {},
	"flac": {},
	"aac":  {},
	"opus": {},
	"m4a":  {},
	"mp4":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if c.Archive.MaxDatabaseBytes <= 0 {
		return errors.New("archive.max_database_bytes must be positive")
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateResolver() error {
	switch c.Resolver.Backend {
	case BackendYtDlp, BackendHTML, BackendNone:
	default:
		return fmt.Errorf("resolver.backend: unsupported value %q (want ytdlp, html, or none)", c.Resolver.Backend)
	}
	if c.Resolver.TimeoutSeconds <= 0 {
		return errors.New("resolver.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	switch c.Pipeline.ExpandRemote {
	case ExpandAuto, ExpandAlways, ExpandNever:
		return nil
	default:
		return fmt.Errorf("pipeline.expand_remote: unsupported value %q (want auto, always, or never)", c.Pipeline.ExpandRemote)
	}
}

func (c *Config) validateDownload() error {
	if _, ok := supportedAudioFormats[c.Download.AudioFormat]; !ok {
		formats := make([]string, 0, len(supportedAudioFormats))
		for name := range supportedAudioFormats {
			formats = append(formats, name)
		}
		sort.Strings(formats)
		return fmt.Errorf("download.audio_format: unsupported value %q (supported: %s)", c.Download.AudioFormat, strings.Join(formats, ", "))
	}
	if c.Download.ThrottleSeconds < 0 {
		return errors.New("download.throttle_seconds must not be negative")
	}
	return nil
}
