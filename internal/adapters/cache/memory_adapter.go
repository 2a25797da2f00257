package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/medroute/navigator/internal/domain/providers"
)

const defaultMemoryCacheSize = 4096

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter implements CacheProvider with an in-process LRU. It is the
// fallback when Redis is unavailable; entries carry their own TTL and
// expired entries are dropped on read.
type MemoryAdapter struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryAdapter creates an in-process cache adapter.
func NewMemoryAdapter() (providers.CacheProvider, error) {
	return newMemoryAdapter(defaultMemoryCacheSize, time.Now)
}

func newMemoryAdapter(size int, now func() time.Time) (*MemoryAdapter, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryAdapter{entries: entries, now: now}, nil
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	entry, ok := a.entries.Get(key)
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	if a.now().After(entry.expiresAt) {
		a.entries.Remove(key)
		return nil, fmt.Errorf("key expired: %s", key)
	}
	return entry.value, nil
}

// Set stores a value in cache with expiration
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	a.entries.Add(key, memoryEntry{
		value:     value,
		expiresAt: a.now().Add(time.Duration(expirationSeconds) * time.Second),
	})
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.entries.Remove(key)
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	entry, ok := a.entries.Peek(key)
	if !ok {
		return false, nil
	}
	if a.now().After(entry.expiresAt) {
		a.entries.Remove(key)
		return false, nil
	}
	return true, nil
}
