package testsupport

import (
	"context"
	"testing"

	"marquee/internal/config"
	"marquee/internal/metadata"
	"marquee/internal/store"
)

// MustOpenStore opens the configured record store and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) store.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	st, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SaveRecord persists rec, failing the test on error.
func SaveRecord(t testing.TB, st store.Store, rec metadata.Record) {
	t.Helper()

	if err := st.Save(context.Background(), rec); err != nil {
		t.Fatalf("store.Save: %v", err)
	}
}
