package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"playbridge/internal/fileutil"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
	"playbridge/internal/textutil"
)

// Supported listing formats.
const (
	M3U8     = "m3u8"
	Text     = "txt"
	Markdown = "md"
	JSON     = "json"
)

const rule = "=========================\n"

type renderer func(c *playlist.Collection, dir string) (map[string][]byte, error)

var renderers = map[string]renderer{
	M3U8:     renderM3U8,
	Text:     single("playlists.txt", renderText),
	Markdown: single("playlists.md", renderMarkdown),
	JSON:     single("playlists.json", renderJSON),
}

// Formats lists the accepted format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write renders c into dir and returns the written paths in order.
func Write(c *playlist.Collection, dir, format string) ([]string, error) {
	render, ok := renderers[format]
	if !ok {
		return nil, services.Wrap(services.ErrUsage, "export", "write",
			fmt.Sprintf("unknown export format %q (want one of %v)", format, Formats()), nil)
	}
	files, err := render(c.Unique(), dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := fileutil.WriteFileAtomic(path, files[path], 0o644); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "export", "write", path, err)
		}
	}
	return paths, nil
}

func single(name string, render func(c *playlist.Collection) ([]byte, error)) renderer {
	return func(c *playlist.Collection, dir string) (map[string][]byte, error) {
		data, err := render(c)
		if err != nil {
			return nil, err
		}
		return map[string][]byte{filepath.Join(dir, name): data}, nil
	}
}

func renderM3U8(c *playlist.Collection, dir string) (map[string][]byte, error) {
	files := make(map[string][]byte, c.Len())
	for _, p := range c.Playlists {
		var b bytes.Buffer
		b.WriteString("#EXTM3U\n")
		b.WriteString("#PLAYLIST:" + p.Name + "\n")
		for _, item := range p.Items {
			b.WriteString(item.URL + "\n")
		}
		files[filepath.Join(dir, textutil.SanitizeFileName(p.Name)+".m3u8")] = b.Bytes()
	}
	return files, nil
}

func renderText(c *playlist.Collection) ([]byte, error) {
	var b bytes.Buffer
	for _, p := range c.Playlists {
		b.WriteString(rule)
		b.WriteString(p.Name + "\n")
		b.WriteString(rule)
		for _, item := range p.Items {
			b.WriteString(item.URL + "\n")
		}
	}
	return b.Bytes(), nil
}

func renderMarkdown(c *playlist.Collection) ([]byte, error) {
	var b bytes.Buffer
	for _, p := range c.Playlists {
		b.WriteString(p.Name + "\n")
		b.WriteString(rule + "\n")
		for _, item := range p.Items {
			fmt.Fprintf(&b, "* [%s](%s)\n", item.URL, item.URL)
		}
		b.WriteString("\n")
	}
	return b.Bytes(), nil
}

// renderJSON writes {"name": [urls...]} keeping playlist order.
func renderJSON(c *playlist.Collection) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{")
	for i, p := range c.Playlists {
		if i > 0 {
			b.WriteString(",")
		}
		key, err := marshalIndented(p.Name, "")
		if err != nil {
			return nil, err
		}
		value, err := marshalIndented(p.URLs(), "    ")
		if err != nil {
			return nil, err
		}
		b.WriteString("\n    ")
		b.Write(key)
		b.WriteString(": ")
		b.Write(value)
	}
	if c.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.Bytes(), nil
}

func marshalIndented(v any, prefix string) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}
