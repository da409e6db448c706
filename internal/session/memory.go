package session

import (
	"context"
	"time"

	"billhub/internal/cache"
)

// MemoryKV keeps session values in process memory. Values are lost on
// restart, which is fine for a single instance or for tests.
type MemoryKV struct {
	entries *cache.LRUCache[string]
}

// NewMemoryKV creates an in-memory store holding at most maxEntries keys.
func NewMemoryKV(maxEntries int) *MemoryKV {
	return &MemoryKV{entries: cache.NewLRUCache[string](maxEntries, 0)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.entries.Get(key)
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.entries.SetWithTTL(key, value, ttl)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *MemoryKV) Ping(context.Context) error { return nil }

// Cleaner exposes the underlying cache for periodic expiry sweeps.
func (m *MemoryKV) Cleaner() cache.Cleaner { return m.entries }
