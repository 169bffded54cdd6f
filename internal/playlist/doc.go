// Package playlist holds the canonical in-memory playlist model shared by every
// format adapter.
//
// A Collection is an ordered list of Playlists; a Playlist is an ordered list of
// Items. Only Item.URL carries identity and ordering; metadata is optional and
// frequently dropped by formats that cannot represent it. Name collisions are
// tolerated while a collection is being built and only collapsed (last write
// wins) when a target format needs unique names.
//
// The package also owns video identity: VideoID extracts platform identifiers
// from URLs and IdentityKey derives the key used to detect duplicates across a
// conversion run.
package playlist
