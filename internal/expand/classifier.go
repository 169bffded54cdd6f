package expand

import "regexp"

// Class is the result of classifying a URL.
type Class int

const (
	// Direct URLs address a single video.
	Direct Class = iota
	// RemoteCompound URLs address a hosted playlist.
	RemoteCompound
)

func (c Class) String() string {
	if c == RemoteCompound {
		return "remote_compound"
	}
	return "direct"
}

var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:youtube\.com|youtu\.be).*list=`),
	regexp.MustCompile(`(?i)(?:odysee\.com|odysee\.tv).*/playlist/`),
	regexp.MustCompile(`(?i)peertube\.`),
}

// Classify reports whether url points at a single video or a hosted playlist.
func Classify(url string) Class {
	for _, pattern := range remotePatterns {
		if pattern.MatchString(url) {
			return RemoteCompound
		}
	}
	return Direct
}

// IsRemote is Classify as a predicate, suitable for Collection.Finalize.
func IsRemote(url string) bool {
	return Classify(url) == RemoteCompound
}
