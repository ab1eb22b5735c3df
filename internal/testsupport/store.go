package testsupport

import (
	"testing"

	"gencatalog/internal/cache"
	"gencatalog/internal/config"
)

// MustOpenCache opens a cache.Store for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config, opts ...cache.Option) *cache.Store {
	t.Helper()

	store, err := cache.Open(cfg.Cache.Dir, opts...)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
