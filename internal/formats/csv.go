package formats

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"playbridge/internal/logging"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

type csvAdapter struct {
	logger *slog.Logger
}

// NewCSV returns the adapter for the two-column interchange file: playlist
// name, then a JSON array of URLs. No header row.
func NewCSV(opts Options) Adapter {
	return &csvAdapter{logger: logging.NewComponentLogger(opts.Logger, CSV)}
}

func (a *csvAdapter) Name() string        { return CSV }
func (a *csvAdapter) NeedsTemplate() bool { return false }
func (a *csvAdapter) KeepsRemote() bool   { return true }

func (a *csvAdapter) Decode(ctx context.Context, data []byte) (*playlist.Collection, error) {
	logger := logging.WithContext(ctx, a.logger)
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	c := &playlist.Collection{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrSourceFormat, CSV, "decode", "malformed CSV", err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) != 2 {
			logging.WarnWithContext(logger, "row skipped", "csv_row_invalid",
				logging.Int("line", line),
				logging.Int("fields", len(record)),
				logging.String(logging.FieldErrorHint, "rows need exactly a name and a URL list"),
				logging.String(logging.FieldImpact, "row is not converted"),
			)
			continue
		}
		name := strings.TrimSpace(record[0])
		urls, err := parseURLList(record[1])
		if err != nil {
			logging.WarnWithContext(logger, "URL list unreadable", "csv_field_invalid",
				logging.Int("line", line),
				logging.String(logging.FieldPlaylist, name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the second column must be a JSON array of strings"),
				logging.String(logging.FieldImpact, "playlist imported empty"),
			)
			urls = nil
		}
		c.Append(playlist.NewPlaylist(name, urls...))
	}
	return c, nil
}

// parseURLList accepts a JSON array of strings or the legacy list-literal
// form. An empty field is an empty list.
func parseURLList(field string) ([]string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	var urls []string
	jsonErr := json.Unmarshal([]byte(field), &urls)
	if jsonErr == nil {
		return compactURLs(urls), nil
	}
	urls, err := parseListLiteral(field)
	if err != nil {
		return nil, err
	}
	return compactURLs(urls), nil
}

func compactURLs(urls []string) []string {
	out := urls[:0]
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func (a *csvAdapter) Encode(_ context.Context, c *playlist.Collection, _ []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, p := range c.Playlists {
		urls := p.URLs()
		list, err := marshalCompact(urls)
		if err != nil {
			return nil, err
		}
		if err := w.Write([]string{p.Name, string(list)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
