package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeResolver()
	c.normalizePipeline()
	c.normalizeDownload()
	c.Grayjay.VideoCacheEntry = strings.Trim(strings.TrimSpace(c.Grayjay.VideoCacheEntry), "/")
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		expanded, err := expandPath(strings.TrimSpace(c.Logging.File))
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}

func (c *Config) normalizeResolver() {
	c.Resolver.Backend = strings.ToLower(strings.TrimSpace(c.Resolver.Backend))
	if c.Resolver.Backend == "" {
		c.Resolver.Backend = defaultResolverBackend
	}
	c.Resolver.YtDlpBinary = strings.TrimSpace(c.Resolver.YtDlpBinary)
	if c.Resolver.YtDlpBinary == "" {
		c.Resolver.YtDlpBinary = defaultYtDlpBinary
	}
	c.Resolver.UserAgent = strings.TrimSpace(c.Resolver.UserAgent)
}

func (c *Config) normalizePipeline() {
	c.Pipeline.ExpandRemote = strings.ToLower(strings.TrimSpace(c.Pipeline.ExpandRemote))
	if c.Pipeline.ExpandRemote == "" {
		c.Pipeline.ExpandRemote = defaultExpandRemote
	}
}

func (c *Config) normalizeDownload() {
	c.Download.AudioFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Download.AudioFormat), "."))
	if c.Download.AudioFormat == "" {
		c.Download.AudioFormat = defaultAudioFormat
	}
}
