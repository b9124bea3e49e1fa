package testsupport

import (
	"context"
	"testing"

	"shotrouter/internal/config"
	"shotrouter/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewScreenshot inserts an inbox record for tests using the provided store.
func NewScreenshot(t testing.TB, st *store.Store, sourcePath string, size int64) *store.Record {
	t.Helper()

	record, err := st.InsertScreenshot(context.Background(), sourcePath, size)
	if err != nil {
		t.Fatalf("store.InsertScreenshot: %v", err)
	}
	return record
}
