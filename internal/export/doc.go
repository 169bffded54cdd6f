// Package export renders a playlist collection as plain listings: one M3U8
// file per playlist, or a single text, Markdown or JSON file. Playlists that
// share a name collapse to the last one, as they would on disk.
package export
