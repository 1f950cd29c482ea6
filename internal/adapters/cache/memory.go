package cache

import (
	"context"
	"sync"
	"time"
)

// Default bound for the in-memory cache.
const defaultMaxEntries = 10000

// MemoryOption applies a configuration option to the Memory cache.
type MemoryOption func(*Memory)

// WithMaxEntries bounds the number of live entries; 0 or negative means
// unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		m.maxEntries = n
	}
}

// WithMemoryClock overrides the time source, used by tests to force expiry.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache with passive TTL expiry. Entries expire
// lazily on read; a full sweep runs only when the entry bound is hit.
type Memory struct {
	mu         sync.RWMutex
	items      map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items:      make(map[string]memoryEntry),
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed.
		if cur, ok := m.items[key]; ok && m.now().After(cur.expiresAt) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.sweepLocked()
	}
	m.items[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// Delete implements Cache.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// sweepLocked drops expired entries; if everything is still live it evicts
// arbitrary entries to make room, since correctness only depends on
// deletion, never on retention.
func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.items {
		if now.After(e.expiresAt) {
			delete(m.items, k)
		}
	}
	for k := range m.items {
		if len(m.items) < m.maxEntries {
			break
		}
		delete(m.items, k)
	}
}
