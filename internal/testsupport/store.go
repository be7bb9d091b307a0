package testsupport

import (
	"context"
	"testing"

	"bobbin/internal/catalog"
	"bobbin/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedVideo inserts a catalogue item for tests using the provided store.
func SeedVideo(t testing.TB, store *catalog.Store, video catalog.Video) {
	t.Helper()

	if err := store.UpsertVideo(context.Background(), video); err != nil {
		t.Fatalf("store.UpsertVideo: %v", err)
	}
}
