package playlist

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// pathIDPrefixes lists youtube.com path forms that carry the video id as the
// next path segment.
var pathIDPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// VideoID extracts the YouTube video id from a URL. It recognises watch URLs
// (v= query parameter), youtu.be short links and the shorts/embed/live path
// forms.
func VideoID(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(parsed.Hostname())
	switch {
	case host == "youtu.be":
		return validID(firstSegment(parsed.Path))
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") ||
		host == "youtube-nocookie.com" || strings.HasSuffix(host, ".youtube-nocookie.com"):
		if v := parsed.Query().Get("v"); v != "" {
			return validID(v)
		}
		for _, prefix := range pathIDPrefixes {
			if strings.HasPrefix(parsed.Path, prefix) {
				return validID(firstSegment(strings.TrimPrefix(parsed.Path, prefix)))
			}
		}
	}
	return "", false
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		path = path[:idx]
	}
	return path
}

func validID(id string) (string, bool) {
	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// WatchURL builds the canonical YouTube watch URL for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// NormalizeURL trims the URL, applies Unicode NFC, lower-cases scheme and host
// and drops the fragment. Values that do not parse as absolute URLs are
// returned trimmed and NFC-normalized.
func NormalizeURL(raw string) string {
	trimmed := norm.NFC.String(strings.TrimSpace(raw))
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return trimmed
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}

// IdentityKey returns the key used to detect duplicate videos: the platform
// video id when recognised, otherwise the normalized URL.
func IdentityKey(raw string) string {
	if id, ok := VideoID(raw); ok {
		return "youtube:" + id
	}
	return NormalizeURL(raw)
}
