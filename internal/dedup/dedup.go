package dedup

import "playbridge/internal/playlist"

// Set records the identity keys observed during one run.
type Set struct {
	seen map[string]struct{}
}

// New returns an empty run-scoped set.
func New() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Seen reports whether url was already recorded.
func (s *Set) Seen(url string) bool {
	_, ok := s.seen[playlist.IdentityKey(url)]
	return ok
}

// Len returns the number of distinct identities recorded.
func (s *Set) Len() int {
	return len(s.seen)
}

// Apply drops every item whose identity was seen earlier in collection order
// then item order, and returns the number of items removed. The first
// occurrence wins.
func (s *Set) Apply(c *playlist.Collection) int {
	if c == nil {
		return 0
	}
	removed := 0
	for _, p := range c.Playlists {
		kept := p.Items[:0]
		for _, item := range p.Items {
			key := playlist.IdentityKey(item.URL)
			if _, dup := s.seen[key]; dup {
				removed++
				continue
			}
			s.seen[key] = struct{}{}
			kept = append(kept, item)
		}
		p.Items = kept
	}
	return removed
}
