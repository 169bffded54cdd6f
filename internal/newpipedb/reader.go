package newpipedb

import (
	"context"
	"database/sql"
	"fmt"

	"playbridge/internal/playlist"
)

// ReadCollection loads local playlists in uid order, each with its streams in
// join order, followed by remote playlists in uid order.
func ReadCollection(ctx context.Context, db *sql.DB) (*playlist.Collection, error) {
	if err := RequireTables(ctx, db); err != nil {
		return nil, err
	}

	type localRow struct {
		uid  int64
		name string
	}
	rows, err := db.QueryContext(ctx, "SELECT uid, COALESCE(name, '') FROM playlists ORDER BY uid")
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	var locals []localRow
	for rows.Next() {
		var r localRow
		if err := rows.Scan(&r.uid, &r.name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		locals = append(locals, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	c := &playlist.Collection{}
	for _, local := range locals {
		items, err := readItems(ctx, db, local.uid)
		if err != nil {
			return nil, err
		}
		c.Append(&playlist.Playlist{Name: local.name, Kind: playlist.KindLocal, KindKnown: true, Items: items})
	}

	remotes, err := db.QueryContext(ctx,
		"SELECT COALESCE(name, ''), COALESCE(url, '') FROM remote_playlists ORDER BY uid")
	if err != nil {
		return nil, fmt.Errorf("query remote playlists: %w", err)
	}
	defer remotes.Close()
	for remotes.Next() {
		var name, url string
		if err := remotes.Scan(&name, &url); err != nil {
			return nil, fmt.Errorf("scan remote playlist: %w", err)
		}
		p := playlist.NewPlaylist(name, url)
		p.Kind = playlist.KindRemote
		p.KindKnown = true
		c.Append(p)
	}
	if err := remotes.Err(); err != nil {
		return nil, fmt.Errorf("iterate remote playlists: %w", err)
	}
	return c, nil
}

func readItems(ctx context.Context, db *sql.DB, playlistUID int64) ([]playlist.Item, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT s.url, s.title, s.uploader, s.uploader_url, s.thumbnail_url,
               s.duration, s.view_count, s.upload_date
        FROM playlist_stream_join j
        JOIN streams s ON j.stream_id = s.uid
        WHERE j.playlist_id = ?
        ORDER BY j.join_index`, playlistUID)
	if err != nil {
		return nil, fmt.Errorf("query playlist %d streams: %w", playlistUID, err)
	}
	defer rows.Close()

	items := make([]playlist.Item, 0)
	for rows.Next() {
		var (
			url, title, uploader    string
			uploaderURL, thumbnail  sql.NullString
			duration                int64
			viewCount, uploadMillis sql.NullInt64
		)
		if err := rows.Scan(&url, &title, &uploader, &uploaderURL, &thumbnail, &duration, &viewCount, &uploadMillis); err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		meta := &playlist.Metadata{
			Title:             title,
			Author:            uploader,
			AuthorURL:         uploaderURL.String,
			ThumbnailURL:      thumbnail.String,
			DurationSeconds:   duration,
			ViewCount:         viewCount.Int64,
			PublishedAtMillis: uploadMillis.Int64,
		}
		// Placeholders mark metadata that was never resolved.
		if meta.Title == PlaceholderTitle {
			meta.Title = ""
		}
		if meta.Author == PlaceholderUploader {
			meta.Author = ""
		}
		items = append(items, playlist.Item{URL: url, Metadata: meta})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streams: %w", err)
	}
	return items, nil
}
