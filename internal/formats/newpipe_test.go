package formats_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"playbridge/internal/formats"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
	"playbridge/internal/testsupport"
)

func TestNewPipeEncodeHonoursSizeLimit(t *testing.T) {
	r := newRegistry(func(o *formats.Options) { o.MaxDatabaseBytes = 16 })
	_, err := adapter(t, r, formats.NewPipe).Encode(context.Background(), sampleCollection(), testsupport.NewPipeTemplate(t))
	if !errors.Is(err, services.ErrSizeLimit) {
		t.Fatalf("expected size limit error, got %v", err)
	}
}

func TestNewPipeTemplateNeedsPreferences(t *testing.T) {
	db := testsupport.ReadZipEntry(t, testsupport.NewPipeTemplate(t), "newpipe.db")
	template := testsupport.Zip(t, testsupport.Entry{Name: "newpipe.db", Data: db})

	_, err := adapter(t, newRegistry(), formats.NewPipe).Encode(context.Background(), sampleCollection(), template)
	if !errors.Is(err, services.ErrSourceFormat) {
		t.Fatalf("expected source format error, got %v", err)
	}
}

func TestNewPipeBareDatabaseTemplate(t *testing.T) {
	db := testsupport.ReadZipEntry(t, testsupport.NewPipeTemplate(t), "newpipe.db")
	a := adapter(t, newRegistry(), formats.NewPipe)

	c := &playlist.Collection{}
	c.Append(playlist.NewPlaylist("Bare", "https://youtu.be/A"))
	out, err := a.Encode(context.Background(), c, db)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("SQLite format 3\x00")) {
		t.Fatal("expected a bare database for a bare template")
	}
	back, err := a.Decode(context.Background(), out)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got := names(back); len(got) != 1 || got[0] != "Bare" {
		t.Fatalf("unexpected playlists: %v", got)
	}
}

func TestNewPipeDecodeRejectsUnknownPayload(t *testing.T) {
	_, err := adapter(t, newRegistry(), formats.NewPipe).Decode(context.Background(), []byte("plain text"))
	if !errors.Is(err, services.ErrSourceFormat) {
		t.Fatalf("expected source format error, got %v", err)
	}
}

func TestNewPipeDatabaseExtractsFromBackup(t *testing.T) {
	backup := testsupport.NewPipeTemplate(t)
	db, err := formats.NewPipeDatabase(backup, 1<<30)
	if err != nil {
		t.Fatalf("NewPipeDatabase returned error: %v", err)
	}
	if !bytes.Equal(db, testsupport.ReadZipEntry(t, backup, "newpipe.db")) {
		t.Fatal("expected the archived database bytes")
	}
	if _, err := formats.NewPipeDatabase(db, 8); !errors.Is(err, services.ErrSizeLimit) {
		t.Fatalf("expected size limit error for a bare database, got %v", err)
	}
}
