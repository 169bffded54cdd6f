package newpipedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"playbridge/internal/logging"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

// Placeholder values written when metadata cannot be resolved.
const (
	PlaceholderTitle    = "Unknown Title"
	PlaceholderUploader = "Unknown Uploader"
)

const streamTypeVideo = "VIDEO_STREAM"

// Summary reports what one rewrite produced.
type Summary struct {
	Streams         int
	Playlists       int
	RemotePlaylists int
	Joins           int
	Placeholders    int
	LastStreamUID   int64
	LastPlaylistUID int64
	LastRemoteUID   int64
}

// Writer rewrites the playlist tables of a NewPipe database.
type Writer struct {
	resolver services.MetadataResolver
	logger   *slog.Logger
}

// NewWriter constructs a writer. A nil resolver writes placeholder metadata
// for items that do not already carry a title.
func NewWriter(resolver services.MetadataResolver, logger *slog.Logger) *Writer {
	return &Writer{
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "newpipedb"),
	}
}

// counter tracks uid allocation for one sqlite_sequence row.
type counter struct {
	table string
	start int64
	next  int64
}

func (c *counter) allocate() int64 {
	uid := c.next
	c.next++
	return uid
}

func (c *counter) allocated() bool { return c.next > c.start }

func (c *counter) last() int64 { return c.next - 1 }

// rewrite holds the caches owned by a single Rewrite call.
type rewrite struct {
	w           *Writer
	tx          *sql.Tx
	streams     *counter
	playlists   *counter
	remotes     *counter
	streamByURL map[string]int64
	remoteURLs  map[string]bool
	summary     Summary
}

// Rewrite replaces the playlist tables with c. The collection must be
// finalized so that playlist kinds are set. All changes happen in one
// transaction.
func (w *Writer) Rewrite(ctx context.Context, db *sql.DB, c *playlist.Collection) (Summary, error) {
	if err := RequireTables(ctx, db); err != nil {
		return Summary{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("begin rewrite tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	r := &rewrite{
		w:           w,
		tx:          tx,
		streamByURL: make(map[string]int64),
		remoteURLs:  make(map[string]bool),
	}
	if r.streams, err = readCounter(ctx, tx, TableStreams); err != nil {
		return Summary{}, err
	}
	if r.playlists, err = readCounter(ctx, tx, TablePlaylists); err != nil {
		return Summary{}, err
	}
	if r.remotes, err = readCounter(ctx, tx, TableRemotePlaylists); err != nil {
		return Summary{}, err
	}

	for _, table := range []string{TableJoin, TableStreams, TablePlaylists, TableRemotePlaylists} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return Summary{}, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if c != nil {
		for _, p := range c.Playlists {
			pctx := services.WithPlaylist(ctx, p.Name)
			if p.Kind == playlist.KindRemote && len(p.Items) == 1 {
				err = r.writeRemote(pctx, p)
			} else {
				err = r.writeLocal(pctx, p)
			}
			if err != nil {
				return Summary{}, err
			}
		}
	}

	for _, ctr := range []*counter{r.streams, r.playlists, r.remotes} {
		if err := writeCounter(ctx, tx, ctr); err != nil {
			return Summary{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("commit rewrite: %w", err)
	}

	r.summary.LastStreamUID = r.streams.last()
	r.summary.LastPlaylistUID = r.playlists.last()
	r.summary.LastRemoteUID = r.remotes.last()
	return r.summary, nil
}

func (r *rewrite) writeRemote(ctx context.Context, p *playlist.Playlist) error {
	url := p.Items[0].URL
	if r.remoteURLs[url] {
		logging.WarnWithContext(logging.WithContext(ctx, r.w.logger), "duplicate remote playlist skipped", "remote_playlist_duplicate",
			logging.String(logging.FieldURL, url),
			logging.String(logging.FieldErrorHint, "the same remote playlist is listed under more than one name"),
			logging.String(logging.FieldImpact, "only the first name is kept"),
		)
		return nil
	}
	uid := r.remotes.allocate()
	if _, err := r.tx.ExecContext(ctx,
		`INSERT INTO remote_playlists (uid, service_id, name, url, thumbnail_url, uploader, display_index, stream_count)
        VALUES (?, ?, ?, ?, '', '', 0, 0)`,
		uid, serviceID(url), p.Name, url,
	); err != nil {
		return fmt.Errorf("insert remote playlist %q: %w", p.Name, err)
	}
	r.remoteURLs[url] = true
	r.summary.RemotePlaylists++
	return nil
}

func (r *rewrite) writeLocal(ctx context.Context, p *playlist.Playlist) error {
	uid := r.playlists.allocate()
	if _, err := r.tx.ExecContext(ctx,
		`INSERT INTO playlists (uid, name, is_thumbnail_permanent, thumbnail_stream_id, display_index)
        VALUES (?, ?, 0, 0, 0)`,
		uid, p.Name,
	); err != nil {
		return fmt.Errorf("insert playlist %q: %w", p.Name, err)
	}
	r.summary.Playlists++

	var thumbnail int64
	for index, item := range p.Items {
		streamUID, err := r.stream(ctx, item)
		if err != nil {
			return err
		}
		if index == 0 {
			thumbnail = streamUID
		}
		if _, err := r.tx.ExecContext(ctx,
			"INSERT INTO playlist_stream_join (playlist_id, stream_id, join_index) VALUES (?, ?, ?)",
			uid, streamUID, index,
		); err != nil {
			return fmt.Errorf("insert join %d for %q: %w", index, p.Name, err)
		}
		r.summary.Joins++
	}

	if thumbnail != 0 {
		if _, err := r.tx.ExecContext(ctx,
			"UPDATE playlists SET thumbnail_stream_id = ? WHERE uid = ?", thumbnail, uid,
		); err != nil {
			return fmt.Errorf("set thumbnail for %q: %w", p.Name, err)
		}
	}
	return nil
}

// stream returns the uid for item's URL, inserting a row on first sight.
func (r *rewrite) stream(ctx context.Context, item playlist.Item) (int64, error) {
	if uid, ok := r.streamByURL[item.URL]; ok {
		return uid, nil
	}
	meta := r.metadata(ctx, item)
	uid := r.streams.allocate()

	var uploadDate any
	if meta.PublishedAtMillis > 0 {
		uploadDate = meta.PublishedAtMillis
	}
	if _, err := r.tx.ExecContext(ctx,
		`INSERT INTO streams (uid, service_id, url, title, stream_type, duration, uploader, uploader_url,
            thumbnail_url, view_count, textual_upload_date, upload_date, is_upload_date_approximation)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?, 1)`,
		uid, serviceID(item.URL), item.URL, meta.Title, streamTypeVideo, meta.DurationSeconds,
		meta.Author, meta.AuthorURL, meta.ThumbnailURL, meta.ViewCount, uploadDate,
	); err != nil {
		return 0, fmt.Errorf("insert stream %s: %w", item.URL, err)
	}
	r.streamByURL[item.URL] = uid
	r.summary.Streams++
	return uid, nil
}

// metadata returns the item's own metadata when it carries a title, otherwise
// asks the resolver once. Failures produce placeholder values.
func (r *rewrite) metadata(ctx context.Context, item playlist.Item) playlist.Metadata {
	var meta playlist.Metadata
	switch {
	case item.HasTitle():
		meta = *item.Metadata
	case r.w.resolver != nil:
		resolved, err := r.w.resolver.Resolve(ctx, item.URL)
		if err != nil || resolved == nil {
			if err == nil {
				err = errors.New("resolver returned no metadata")
			}
			logging.WarnWithContext(logging.WithContext(ctx, r.w.logger), "metadata unavailable", "metadata_fallback",
				logging.String(logging.FieldURL, item.URL),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the metadata resolver configuration"),
				logging.String(logging.FieldImpact, "stream written with placeholder metadata"),
			)
		} else {
			meta = *resolved
		}
	}
	if meta.Title == "" {
		meta.Title = PlaceholderTitle
		r.summary.Placeholders++
	}
	if meta.Author == "" {
		meta.Author = PlaceholderUploader
	}
	return meta
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readCounter(ctx context.Context, q querier, table string) (*counter, error) {
	var seq int64
	err := q.QueryRowContext(ctx, "SELECT seq FROM sqlite_sequence WHERE name = ?", table).Scan(&seq)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read %s sequence: %w", table, err)
	}
	return &counter{table: table, start: seq + 1, next: seq + 1}, nil
}

func writeCounter(ctx context.Context, tx *sql.Tx, c *counter) error {
	if !c.allocated() {
		return nil
	}
	res, err := tx.ExecContext(ctx, "UPDATE sqlite_sequence SET seq = ? WHERE name = ?", c.last(), c.table)
	if err != nil {
		return fmt.Errorf("update %s sequence: %w", c.table, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO sqlite_sequence (name, seq) VALUES (?, ?)", c.table, c.last()); err != nil {
		return fmt.Errorf("insert %s sequence: %w", c.table, err)
	}
	return nil
}
