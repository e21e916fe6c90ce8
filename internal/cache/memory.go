package cache

import (
	"context"
	"sync"
	"time"

	"modsieve/pkg/platform/sentinel"
)

// Memory is a thread-safe in-memory ResultCache with per-entry TTLs. Expired
// entries are dropped lazily on read and swept opportunistically on write.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements ResultCache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}

	// Copy so callers cannot mutate the stored value.
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set implements ResultCache. Concurrent writes to the same key resolve last
// write wins.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.sweepLocked()
	m.mu.Unlock()
	return nil
}

// Len returns the number of live entries; used by tests.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// sweepLocked drops expired entries. Caller holds the write lock.
func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
