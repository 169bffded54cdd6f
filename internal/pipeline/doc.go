// Package pipeline runs one conversion end to end.
//
// A Runner reads the source file, picks the source and target adapters,
// optionally expands remote playlists, assigns playlist kinds, removes
// duplicates, fills in missing metadata for targets that display it, and
// writes the target atomically while holding a lock on the destination.
// Each Convert call owns its de-duplication set and writer caches; nothing
// is shared between runs.
//
// The package also hosts the download loop used by the download command,
// since it needs the same source loading and collaborator wiring.
package pipeline
