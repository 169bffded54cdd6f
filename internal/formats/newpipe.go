package formats

import (
	"context"
	"database/sql"
	"log/slog"

	"playbridge/internal/archive"
	"playbridge/internal/logging"
	"playbridge/internal/newpipedb"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

const newpipePreferencesEntry = "preferences.json"

type newpipeAdapter struct {
	opts   Options
	logger *slog.Logger
}

// NewNewPipe returns the adapter for NewPipe backups (ZIP) and bare
// newpipe.db files.
func NewNewPipe(opts Options) Adapter {
	return &newpipeAdapter{opts: opts, logger: logging.NewComponentLogger(opts.Logger, NewPipe)}
}

func (a *newpipeAdapter) Name() string        { return NewPipe }
func (a *newpipeAdapter) NeedsTemplate() bool { return true }
func (a *newpipeAdapter) KeepsRemote() bool   { return true }

// database extracts the database bytes from a backup archive or returns data
// itself for a bare database. The declared size is checked before extraction.
func (a *newpipeAdapter) database(data []byte, required ...string) (*archive.Archive, []byte, error) {
	switch {
	case archive.IsZip(data):
		arc, err := archive.Read(data)
		if err != nil {
			return nil, nil, err
		}
		if err := arc.Require(append([]string{newpipedb.DatabaseEntry}, required...)...); err != nil {
			return nil, nil, err
		}
		if err := arc.CheckSize(newpipedb.DatabaseEntry, a.opts.MaxDatabaseBytes); err != nil {
			return nil, nil, err
		}
		db, err := arc.Get(newpipedb.DatabaseEntry)
		if err != nil {
			return nil, nil, err
		}
		return arc, db, nil
	case newpipedb.IsDatabase(data):
		if limit := a.opts.MaxDatabaseBytes; limit > 0 && int64(len(data)) > limit {
			return nil, nil, services.Wrap(services.ErrSizeLimit, NewPipe, "read", "database exceeds the size limit", nil)
		}
		return nil, data, nil
	}
	return nil, nil, services.SourceFormat(NewPipe, "neither a ZIP backup nor a SQLite database")
}

func (a *newpipeAdapter) Decode(ctx context.Context, data []byte) (*playlist.Collection, error) {
	_, db, err := a.database(data)
	if err != nil {
		return nil, err
	}
	var c *playlist.Collection
	err = newpipedb.Inspect(ctx, db, func(db *sql.DB) error {
		var readErr error
		c, readErr = newpipedb.ReadCollection(ctx, db)
		return readErr
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a *newpipeAdapter) Encode(ctx context.Context, c *playlist.Collection, template []byte) ([]byte, error) {
	if err := requireTemplate(NewPipe, template); err != nil {
		return nil, err
	}
	arc, db, err := a.database(template, newpipePreferencesEntry)
	if err != nil {
		return nil, err
	}

	writer := newpipedb.NewWriter(a.opts.Resolver, a.opts.Logger)
	var summary newpipedb.Summary
	updated, err := newpipedb.Edit(ctx, db, func(db *sql.DB) error {
		var rewriteErr error
		summary, rewriteErr = writer.Rewrite(ctx, db, c)
		return rewriteErr
	})
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, a.logger).Info("newpipe database rewritten",
		logging.Int("streams", summary.Streams),
		logging.Int("playlists", summary.Playlists),
		logging.Int("remote_playlists", summary.RemotePlaylists),
		logging.Int("placeholders", summary.Placeholders),
	)

	if arc == nil {
		return updated, nil
	}
	arc.Set(newpipedb.DatabaseEntry, updated)
	return arc.Bytes()
}

// NewPipeTemplate builds a minimal NewPipe backup: an empty database with the
// playlist tables and an empty preferences file.
func NewPipeTemplate(ctx context.Context) ([]byte, error) {
	db, err := newpipedb.EmptyDatabase(ctx)
	if err != nil {
		return nil, err
	}
	arc := archive.New()
	arc.Set(newpipedb.DatabaseEntry, db)
	arc.Set(newpipePreferencesEntry, []byte("{}"))
	return arc.Bytes()
}

// NewPipeDatabase returns the newpipe.db bytes from a backup archive or a
// bare database, enforcing maxBytes the same way Decode does.
func NewPipeDatabase(data []byte, maxBytes int64) ([]byte, error) {
	a := &newpipeAdapter{opts: Options{MaxDatabaseBytes: maxBytes}}
	_, db, err := a.database(data)
	return db, err
}
