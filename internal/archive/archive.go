package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"playbridge/internal/fileutil"
	"playbridge/internal/services"
)

type entry struct {
	name    string
	source  *zip.File
	data    []byte
	changed bool
}

// Archive is an ordered, editable view of a ZIP file.
type Archive struct {
	entries []*entry
	index   map[string]int
	comment string
	now     func() time.Time
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{index: make(map[string]int), now: time.Now}
}

// IsZip reports whether data starts with a ZIP signature.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04")) || bytes.HasPrefix(data, []byte("PK\x05\x06"))
}

// Read parses a ZIP archive held in memory.
func Read(data []byte) (*Archive, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, services.Wrap(services.ErrSourceFormat, "archive", "read", "not a zip archive", err)
	}
	a := New()
	a.comment = reader.Comment
	for _, f := range reader.File {
		if _, dup := a.index[f.Name]; dup {
			// Later duplicates shadow earlier ones, matching what unzip tools extract.
			a.entries[a.index[f.Name]].source = f
			continue
		}
		a.index[f.Name] = len(a.entries)
		a.entries = append(a.entries, &entry{name: f.Name, source: f})
	}
	return a, nil
}

// Load reads a ZIP archive from disk.
func Load(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	return Read(data)
}

// Names returns entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		names = append(names, e.name)
	}
	return names
}

// Has reports whether the archive holds name.
func (a *Archive) Has(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Require fails with ErrSourceFormat naming every missing entry.
func (a *Archive) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !a.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(services.ErrSourceFormat, "archive", "require",
		"missing entries: "+strings.Join(missing, ", "), nil)
}

// DeclaredSize returns the uncompressed size recorded for name.
func (a *Archive) DeclaredSize(name string) (uint64, bool) {
	idx, ok := a.index[name]
	if !ok {
		return 0, false
	}
	e := a.entries[idx]
	if e.changed || e.source == nil {
		return uint64(len(e.data)), true
	}
	return e.source.UncompressedSize64, true
}

// CheckSize fails with ErrSizeLimit when the declared size of name exceeds
// limit. No data is decompressed.
func (a *Archive) CheckSize(name string, limit int64) error {
	size, ok := a.DeclaredSize(name)
	if !ok {
		return a.Require(name)
	}
	if limit > 0 && size > uint64(limit) {
		return services.Wrap(services.ErrSizeLimit, "archive", "check size",
			fmt.Sprintf("%s declares %d bytes, limit is %d", name, size, limit), nil)
	}
	return nil
}

// Get returns the uncompressed contents of name.
func (a *Archive) Get(name string) ([]byte, error) {
	idx, ok := a.index[name]
	if !ok {
		return nil, a.Require(name)
	}
	e := a.entries[idx]
	if e.changed || e.source == nil {
		return append([]byte(nil), e.data...), nil
	}
	rc, err := e.source.Open()
	if err != nil {
		return nil, services.Wrap(services.ErrSourceFormat, "archive", "open entry", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceFormat, "archive", "read entry", name, err)
	}
	return data, nil
}

// Set replaces the contents of name in place, or appends a new entry when
// the name is not present.
func (a *Archive) Set(name string, data []byte) {
	if idx, ok := a.index[name]; ok {
		e := a.entries[idx]
		e.data = append([]byte(nil), data...)
		e.changed = true
		return
	}
	a.index[name] = len(a.entries)
	a.entries = append(a.entries, &entry{name: name, data: append([]byte(nil), data...), changed: true})
}

// Bytes serializes the archive. Unchanged entries are copied raw.
func (a *Archive) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range a.entries {
		if !e.changed && e.source != nil {
			if err := w.Copy(e.source); err != nil {
				return nil, fmt.Errorf("copy entry %s: %w", e.name, err)
			}
			continue
		}
		fw, err := w.CreateHeader(a.headerFor(e))
		if err != nil {
			return nil, fmt.Errorf("create entry %s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", e.name, err)
		}
	}
	if a.comment != "" {
		if err := w.SetComment(a.comment); err != nil {
			return nil, fmt.Errorf("set archive comment: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the archive to path atomically.
func (a *Archive) Save(path string) error {
	data, err := a.Bytes()
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

func (a *Archive) headerFor(e *entry) *zip.FileHeader {
	hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: a.now()}
	if e.source != nil {
		hdr.Method = e.source.Method
		hdr.Comment = e.source.Comment
		hdr.ExternalAttrs = e.source.ExternalAttrs
		hdr.CreatorVersion = e.source.CreatorVersion
	}
	return hdr
}
