package testsupport

import (
	"path/filepath"
	"testing"

	"substation/internal/config"
	"substation/internal/history"
	"substation/internal/profiledb"
)

// MustOpenProfileStore opens a profile database under the config's data
// directory and closes it when the test finishes.
func MustOpenProfileStore(t testing.TB, cfg *config.Config) *profiledb.Store {
	t.Helper()

	store, err := profiledb.Open(filepath.Join(cfg.Paths.DataDir, "profiles.db"))
	if err != nil {
		t.Fatalf("open profile store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenHistoryStore opens a download history database under the
// config's data directory and closes it when the test finishes.
func MustOpenHistoryStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(filepath.Join(cfg.Paths.DataDir, "history.db"))
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
