package services

import (
	"context"

	"playbridge/internal/playlist"
)

// MetadataResolver fetches descriptive metadata for a single video URL.
type MetadataResolver interface {
	Resolve(ctx context.Context, url string) (*playlist.Metadata, error)
}

// PlaylistResolver flattens a remote playlist URL into ordered video URLs.
type PlaylistResolver interface {
	Expand(ctx context.Context, url string) ([]string, error)
}

// Downloader fetches the media behind a video URL into destDir and returns the
// resulting file path.
type Downloader interface {
	Download(ctx context.Context, url, destDir string) (string, error)
}
