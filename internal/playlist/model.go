package playlist

// Kind distinguishes playlists stored as concrete items from playlists that
// reference an externally hosted list.
type Kind int

const (
	// KindLocal playlists carry their membership as ordered items.
	KindLocal Kind = iota
	// KindRemote playlists are a single reference to an external list.
	KindRemote
)

func (k Kind) String() string {
	if k == KindRemote {
		return "remote"
	}
	return "local"
}

// Metadata is the optional descriptive block attached to an item. Zero values
// mean "absent".
type Metadata struct {
	Title             string
	Author            string
	AuthorID          string
	AuthorURL         string
	ThumbnailURL      string
	DurationSeconds   int64
	ViewCount         int64
	PublishedAtMillis int64
	AddedAtMillis     int64
	ItemID            string
}

// Item is a single video reference.
type Item struct {
	URL      string
	Metadata *Metadata
}

// HasTitle reports whether the item carries resolved metadata.
func (i Item) HasTitle() bool {
	return i.Metadata != nil && i.Metadata.Title != ""
}

// Playlist is a named, ordered list of items.
type Playlist struct {
	Name      string
	Kind      Kind
	Items     []Item
	Expanded  bool
	// KindKnown is set by sources that store the kind; Finalize keeps it.
	KindKnown bool
}

// IsRemoteCandidate reports whether p is a single reference to a hosted list.
// Stored kinds win over the URL heuristic.
func (p *Playlist) IsRemoteCandidate(isRemote func(url string) bool) bool {
	if p.Expanded || len(p.Items) != 1 {
		return false
	}
	if p.KindKnown {
		return p.Kind == KindRemote
	}
	return isRemote != nil && isRemote(p.Items[0].URL)
}

// URLs returns the item URLs in order.
func (p *Playlist) URLs() []string {
	urls := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		urls = append(urls, item.URL)
	}
	return urls
}

// NewPlaylist builds a local playlist from plain URLs.
func NewPlaylist(name string, urls ...string) *Playlist {
	p := &Playlist{Name: name, Items: make([]Item, 0, len(urls))}
	for _, u := range urls {
		p.Items = append(p.Items, Item{URL: u})
	}
	return p
}

// Collection is an ordered set of playlists in source iteration order.
type Collection struct {
	Playlists []*Playlist
}

// Append adds a playlist at the end. Duplicate names are kept.
func (c *Collection) Append(p *Playlist) {
	if p == nil {
		return
	}
	c.Playlists = append(c.Playlists, p)
}

// Len returns the number of playlists.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Playlists)
}

// ItemCount returns the total number of items across all playlists.
func (c *Collection) ItemCount() int {
	total := 0
	for _, p := range c.Playlists {
		total += len(p.Items)
	}
	return total
}

// ForEachItem visits every item in collection order, then item order. The
// visitor returns false to stop the traversal.
func (c *Collection) ForEachItem(visit func(p *Playlist, index int, item Item) bool) {
	if c == nil {
		return
	}
	for _, p := range c.Playlists {
		for i, item := range p.Items {
			if !visit(p, i, item) {
				return
			}
		}
	}
}

// Unique collapses playlists sharing a name. The last playlist written for a
// name wins and takes the position where that name first appeared.
func (c *Collection) Unique() *Collection {
	index := make(map[string]int, len(c.Playlists))
	out := &Collection{Playlists: make([]*Playlist, 0, len(c.Playlists))}
	for _, p := range c.Playlists {
		if pos, ok := index[p.Name]; ok {
			out.Playlists[pos] = p
			continue
		}
		index[p.Name] = len(out.Playlists)
		out.Playlists = append(out.Playlists, p)
	}
	return out
}

// Finalize assigns playlist kinds. A playlist is remote when it was not
// expanded and holds exactly one item that is a remote reference: the stored
// kind when the source recorded one, otherwise whatever isRemote accepts.
func (c *Collection) Finalize(isRemote func(url string) bool) {
	for _, p := range c.Playlists {
		remote := p.IsRemoteCandidate(isRemote)
		p.Kind = KindLocal
		if remote {
			p.Kind = KindRemote
		}
	}
}
