// Package newpipedb reads and rewrites the playlist tables of a NewPipe
// database.
//
// Rewrite replaces the contents of streams, playlists, playlist_stream_join
// and remote_playlists with a finalized collection inside one transaction.
// Identifiers continue from the sqlite_sequence counters recorded in the
// store, and one stream row is written per distinct URL no matter how many
// playlists reference it. Any failure rolls the store back untouched.
//
// ReadCollection is the inverse: local playlists in uid order with their
// streams in join order, followed by remote playlists.
package newpipedb
