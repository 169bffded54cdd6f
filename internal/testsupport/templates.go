package testsupport

import (
	"context"
	"testing"

	"playbridge/internal/formats"
)

// NewPipeTemplate returns an empty NewPipe backup archive.
func NewPipeTemplate(t testing.TB) []byte {
	t.Helper()

	data, err := formats.NewPipeTemplate(context.Background())
	if err != nil {
		t.Fatalf("build newpipe template: %v", err)
	}
	return data
}

// GrayjayTemplate returns a small Grayjay export with an empty playlist
// store and unrelated entries that must survive repacking.
func GrayjayTemplate(t testing.TB) []byte {
	t.Helper()

	return Zip(t,
		Entry{Name: "settings.json", Data: []byte(`{"theme":"dark"}`)},
		Entry{Name: "stores/Playlists", Data: []byte(`[]`)},
		Entry{Name: "stores/Subscriptions", Data: []byte(`["https://www.youtube.com/channel/UC1"]`)},
	)
}
