package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds every yt-dlp invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithAudioFormat selects the audio format used by Download.
func WithAudioFormat(format string) Option {
	return func(c *Client) {
		if format = strings.TrimSpace(format); format != "" {
			c.audioFormat = format
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary      string
	timeout     time.Duration
	audioFormat string
	exec        Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:      binary,
		audioFormat: "mp3",
		exec:        commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type videoJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Uploader    string   `json:"uploader"`
	UploaderURL string   `json:"uploader_url"`
	ChannelID   string   `json:"channel_id"`
	ChannelURL  string   `json:"channel_url"`
	Thumbnail   string   `json:"thumbnail"`
	Duration    float64  `json:"duration"`
	ViewCount   int64    `json:"view_count"`
	Timestamp   *float64 `json:"timestamp"`
}

type playlistJSON struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Entries []entryJSON `json:"entries"`
}

type entryJSON struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	WebpageURL string `json:"webpage_url"`
	IEKey      string `json:"ie_key"`
}

// Resolve returns metadata for a single video URL.
func (c *Client) Resolve(ctx context.Context, url string) (*playlist.Metadata, error) {
	out, err := c.run(ctx, "resolve", []string{"-J", "--no-playlist", "--skip-download", "--no-warnings", url})
	if err != nil {
		return nil, err
	}
	var info videoJSON
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "resolve", "decode json", err)
	}
	meta := &playlist.Metadata{
		Title:           strings.TrimSpace(info.Title),
		Author:          strings.TrimSpace(info.Uploader),
		AuthorID:        info.ChannelID,
		AuthorURL:       firstNonEmpty(info.UploaderURL, info.ChannelURL),
		ThumbnailURL:    info.Thumbnail,
		DurationSeconds: int64(info.Duration),
		ViewCount:       info.ViewCount,
	}
	if info.Timestamp != nil {
		meta.PublishedAtMillis = int64(*info.Timestamp) * 1000
	}
	return meta, nil
}

// Expand flattens a remote playlist into its member video URLs in order.
func (c *Client) Expand(ctx context.Context, url string) ([]string, error) {
	out, err := c.run(ctx, "expand", []string{"-J", "--flat-playlist", "--no-warnings", url})
	if err != nil {
		return nil, err
	}
	var info playlistJSON
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "expand", "decode json", err)
	}
	urls := make([]string, 0, len(info.Entries))
	for _, entry := range info.Entries {
		if u := entryURL(entry); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func entryURL(entry entryJSON) string {
	for _, candidate := range []string{entry.URL, entry.WebpageURL} {
		if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
			return candidate
		}
	}
	// Older yt-dlp releases emit bare ids for YouTube flat entries.
	if strings.EqualFold(entry.IEKey, "Youtube") && entry.ID != "" {
		return playlist.WatchURL(entry.ID)
	}
	return ""
}

// Download extracts the audio track of url into destDir and returns the final
// file path reported by yt-dlp.
func (c *Client) Download(ctx context.Context, url, destDir string) (string, error) {
	if strings.TrimSpace(destDir) == "" {
		return "", errors.New("destination directory required")
	}
	args := []string{"--no-simulate", "--no-warnings", "--print", "after_move:filepath",
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s")}
	if c.audioFormat == "mp4" {
		args = append(args, "-f", "bestaudio[ext=m4a]/bestaudio")
	} else {
		args = append(args, "-x", "--audio-format", c.audioFormat)
	}
	args = append(args, "--no-playlist", url)

	out, err := c.runUnbounded(ctx, "download", args)
	if err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	path := strings.TrimSpace(lines[len(lines)-1])
	if path == "" {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", "no output path reported", nil)
	}
	return path, nil
}

func (c *Client) run(ctx context.Context, operation string, args []string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.runUnbounded(ctx, operation, args)
}

func (c *Client) runUnbounded(ctx context.Context, operation string, args []string) ([]byte, error) {
	out, err := c.exec.Output(ctx, c.binary, args)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "ytdlp", operation, "deadline exceeded", err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "ytdlp", operation, "", err)
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type commandExecutor struct{}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, lastLine(msg))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
