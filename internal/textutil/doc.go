// Package textutil provides filename sanitization for exported playlists.
package textutil
