// Package archive edits ZIP backups as an ordered map of entries.
//
// Entries keep the order of the source archive. Set replaces an entry in
// place or appends a new one at the end. Entries that were never replaced are
// copied into the output without recompression, so their bytes stay identical
// to the template. Declared entry sizes can be checked against a ceiling
// before any data is decompressed.
package archive
