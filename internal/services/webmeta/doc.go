// Package webmeta resolves video metadata by fetching the watch page and
// reading its Open Graph and schema.org itemprop tags.
//
// It implements services.MetadataResolver only; playlist expansion needs
// yt-dlp. Parse is a pure function over the page body so tests can feed
// fixtures without a server.
package webmeta
