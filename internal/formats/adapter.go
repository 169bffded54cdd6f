package formats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"playbridge/internal/archive"
	"playbridge/internal/newpipedb"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

// Format identifiers accepted by Lookup and the CLI.
const (
	FreeTube = "freetube"
	NewPipe  = "newpipe"
	Grayjay  = "grayjay"
	Piped    = "piped"
	CSV      = "csv"
)

// Adapter reads and writes one storage format.
type Adapter interface {
	Name() string
	Decode(ctx context.Context, data []byte) (*playlist.Collection, error)
	// Encode serializes c. Archive formats edit template and require it.
	Encode(ctx context.Context, c *playlist.Collection, template []byte) ([]byte, error)
	// NeedsTemplate reports whether Encode requires a template archive.
	NeedsTemplate() bool
	// KeepsRemote reports whether the format stores remote playlist
	// references as such, so expansion is optional.
	KeepsRemote() bool
}

// Options carries the collaborators and limits adapters share.
type Options struct {
	Logger *slog.Logger
	// Resolver supplies metadata for NewPipe stream rows.
	Resolver services.MetadataResolver
	// MaxDatabaseBytes bounds the declared size of newpipe.db inside a backup.
	MaxDatabaseBytes int64
	// VideoCacheEntry names an optional Grayjay entry listing video ids.
	VideoCacheEntry string
	Now             func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Registry resolves format identifiers to adapters.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds every adapter with the shared options.
func NewRegistry(opts Options) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range []Adapter{
		NewFreeTube(opts),
		NewNewPipe(opts),
		NewGrayjay(opts),
		NewPiped(opts),
		NewCSV(opts),
	} {
		r.adapters[a.Name()] = a
	}
	return r
}

// Lookup returns the adapter for name, failing with ErrUsage when unknown.
func (r *Registry) Lookup(name string) (Adapter, error) {
	a, ok := r.adapters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, services.Wrap(services.ErrUsage, "formats", "lookup",
			fmt.Sprintf("unknown format %q (supported: %s)", name, strings.Join(r.Names(), ", ")), nil)
	}
	return a, nil
}

// Names lists the registered format identifiers alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect infers the format of a source file from its name and contents.
func Detect(path string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".json":
		return Piped, nil
	}
	switch {
	case archive.IsZip(data):
		a, err := archive.Read(data)
		if err != nil {
			return "", err
		}
		switch {
		case a.Has(newpipedb.DatabaseEntry):
			return NewPipe, nil
		case a.Has(grayjayPlaylistsEntry):
			return Grayjay, nil
		}
		return "", services.SourceFormat("formats", "archive holds neither "+newpipedb.DatabaseEntry+" nor "+grayjayPlaylistsEntry)
	case newpipedb.IsDatabase(data):
		return NewPipe, nil
	case looksLikeFreeTube(data):
		return FreeTube, nil
	}
	return "", services.Wrap(services.ErrUsage, "formats", "detect",
		fmt.Sprintf("cannot infer format of %s; pass --from", path), nil)
}

// DetectTarget infers the destination format from the template contents when
// one is given, otherwise from the destination file name.
func DetectTarget(path string, template []byte) (string, error) {
	if len(template) > 0 {
		return Detect(path, template)
	}
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ".csv"):
		return CSV, nil
	case strings.HasSuffix(base, ".json"):
		return Piped, nil
	case base == newpipedb.DatabaseEntry:
		return NewPipe, nil
	case strings.HasSuffix(base, ".db"):
		return FreeTube, nil
	}
	return "", services.Wrap(services.ErrUsage, "formats", "detect target",
		fmt.Sprintf("cannot infer format of %s; pass --to", path), nil)
}

func looksLikeFreeTube(data []byte) bool {
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var probe struct {
			PlaylistName *string `json:"playlistName"`
		}
		return json.Unmarshal(line, &probe) == nil && probe.PlaylistName != nil
	}
	return false
}

// marshalCompact encodes v without insignificant whitespace and without
// escaping &, < and > so URLs stay readable.
func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func requireTemplate(format string, template []byte) error {
	if len(template) == 0 {
		return services.Wrap(services.ErrUsage, format, "encode", "a template archive is required for this target", nil)
	}
	return nil
}
