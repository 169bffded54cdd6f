// Package dedup removes repeated videos across a collection.
//
// A Set is scoped to one conversion run and is never shared between runs.
// Items are compared by playlist.IdentityKey, so different URL spellings of
// the same YouTube video collapse to one entry.
package dedup
