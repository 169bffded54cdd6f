package testsupport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"playbridge/internal/playlist"
)

// StubResolver implements the metadata and playlist resolver interfaces from
// canned data and records every call.
type StubResolver struct {
	mu        sync.Mutex
	Metadata  map[string]*playlist.Metadata
	Playlists map[string][]string
	Fail      map[string]bool
	Calls     []string
}

// NewStubResolver returns an empty stub.
func NewStubResolver() *StubResolver {
	return &StubResolver{
		Metadata:  map[string]*playlist.Metadata{},
		Playlists: map[string][]string{},
		Fail:      map[string]bool{},
	}
}

func (s *StubResolver) record(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, url)
	if s.Fail[url] {
		return errors.New("stub failure for " + url)
	}
	return nil
}

// Resolve returns the canned metadata for url, or a generated title.
func (s *StubResolver) Resolve(_ context.Context, url string) (*playlist.Metadata, error) {
	if err := s.record(url); err != nil {
		return nil, err
	}
	if meta, ok := s.Metadata[url]; ok {
		clone := *meta
		return &clone, nil
	}
	return &playlist.Metadata{Title: "Video " + url, Author: "Stub Uploader"}, nil
}

// Expand returns the canned membership for a remote playlist URL.
func (s *StubResolver) Expand(_ context.Context, url string) ([]string, error) {
	if err := s.record(url); err != nil {
		return nil, err
	}
	return append([]string(nil), s.Playlists[url]...), nil
}

// CallCount returns how often url was requested.
func (s *StubResolver) CallCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, call := range s.Calls {
		if call == url {
			n++
		}
	}
	return n
}

// StubDownloader writes a small file per URL instead of downloading.
type StubDownloader struct {
	Fail  map[string]bool
	Calls []string
}

// Download creates <destDir>/<last path segment>.mp3.
func (d *StubDownloader) Download(_ context.Context, url, destDir string) (string, error) {
	d.Calls = append(d.Calls, url)
	if d.Fail[url] {
		return "", errors.New("stub download failure")
	}
	name := url[strings.LastIndexAny(url, "/=")+1:] + ".mp3"
	path := filepath.Join(destDir, name)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte("audio"), 0o644)
}
