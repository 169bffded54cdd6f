// Package formats converts between playlist collections and the storage
// formats of FreeTube, NewPipe, Grayjay and Piped, plus a two-column CSV
// interchange file.
//
// Every format implements Adapter. Decode fails with services.ErrSourceFormat
// when a required structural element is missing; recoverable problems inside
// otherwise valid input (an unparsable record, a malformed entry) are logged
// as warnings and the affected record degrades. Archive targets (NewPipe,
// Grayjay) are written by editing a template archive so that entries the
// adapter does not own stay byte-identical.
//
// What each format cannot represent:
//
//   - freetube: non-YouTube URLs, view counts, thumbnails, uploader URLs, remote playlists
//   - grayjay: all per-item metadata
//   - piped: all per-item metadata
//   - csv: all per-item metadata
//   - newpipe: author ids, item ids and added-at timestamps
package formats
