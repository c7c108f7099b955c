package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/moveinsync/movi/internal/adapter/sqlite"
	"github.com/moveinsync/movi/internal/config"
	"github.com/moveinsync/movi/internal/port/database"
)

// newSeededStore opens a migrated, seeded SQLite store in a temp dir so
// service tests run against the real demo dataset.
func newSeededStore(t *testing.T) database.Store {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, config.SQLite{Path: filepath.Join(t.TempDir(), "service_test.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := sqlite.Seed(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return sqlite.NewStore(db)
}

// fakeBroadcaster records every event pushed through it, in order.
type fakeBroadcaster struct {
	mu       sync.Mutex
	events   []string
	payloads []any
}

func (f *fakeBroadcaster) BroadcastEvent(_ context.Context, eventType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	f.payloads = append(f.payloads, payload)
}

// fakeCache is a map-backed cache.Cache with no TTL enforcement.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	clears  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.clears++
	return nil
}
