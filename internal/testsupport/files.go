package testsupport

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Entry is one file placed into a test archive.
type Entry struct {
	Name string
	Data []byte
}

// WriteFile writes data to path, creating parent directories, and returns
// the path.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Zip builds an archive holding entries in order.
func Zip(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := w.Create(e.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			t.Fatalf("write zip entry %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// ReadZipEntry returns the contents of name inside data.
func ReadZipEntry(t testing.TB, data []byte, name string) []byte {
	t.Helper()

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		var out bytes.Buffer
		if _, err := out.ReadFrom(rc); err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return out.Bytes()
	}
	t.Fatalf("zip entry %s not found", name)
	return nil
}
