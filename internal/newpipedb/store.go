package newpipedb

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"playbridge/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// DatabaseEntry is the archive entry holding the database inside a backup.
const DatabaseEntry = "newpipe.db"

// Table names touched by the reader and writer.
const (
	TableStreams         = "streams"
	TablePlaylists       = "playlists"
	TableJoin            = "playlist_stream_join"
	TableRemotePlaylists = "remote_playlists"
)

var requiredTables = []string{TableStreams, TablePlaylists, TableJoin, TableRemotePlaylists}

// sqliteMagic prefixes every SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// IsDatabase reports whether data starts with the SQLite file header.
func IsDatabase(data []byte) bool {
	return bytes.HasPrefix(data, sqliteMagic)
}

// Open connects to the database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	// History, feed and state tables cascade from streams; the rewrite must
	// not touch them.
	pragmas := []string{
		"PRAGMA foreign_keys = OFF",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// InitSchema creates the playlist tables when they do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RequireTables fails with ErrSourceFormat when any playlist table is missing.
func RequireTables(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return services.Wrap(services.ErrSourceFormat, "newpipedb", "list tables", "", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan table name: %w", err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tables: %w", err)
	}

	var missing []string
	for _, table := range requiredTables {
		if !present[table] {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return services.SourceFormat("newpipedb", "missing tables: "+strings.Join(missing, ", "))
	}
	return nil
}

// Inspect opens a private copy of a serialized database and hands it to fn.
func Inspect(ctx context.Context, data []byte, fn func(*sql.DB) error) error {
	_, err := withCopy(ctx, data, false, fn)
	return err
}

// Edit opens a private copy of a serialized database, hands it to fn and
// returns the database bytes after fn returns successfully.
func Edit(ctx context.Context, data []byte, fn func(*sql.DB) error) ([]byte, error) {
	return withCopy(ctx, data, true, fn)
}

func withCopy(ctx context.Context, data []byte, readBack bool, fn func(*sql.DB) error) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "playbridge-newpipe-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, DatabaseEntry)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("stage database: %w", err)
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := fn(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("close database: %w", err)
	}
	if !readBack {
		return nil, nil
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read back database: %w", err)
	}
	return out, nil
}

// serviceID maps a URL to NewPipe's streaming service identifier.
func serviceID(url string) int {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "soundcloud.com"):
		return 1
	case strings.Contains(lower, "media.ccc.de"):
		return 2
	case strings.Contains(lower, "peertube."):
		return 3
	case strings.Contains(lower, "bandcamp.com"):
		return 4
	default:
		return 0
	}
}

// EmptyDatabase returns a serialized database holding only the playlist
// tables.
func EmptyDatabase(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "playbridge-newpipe-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, DatabaseEntry)
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := InitSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("close database: %w", err)
	}
	return os.ReadFile(path)
}
