package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a Store kept in a bounded LRU inside the process.
// The mutex makes SetNX atomic with respect to the other operations.
type MemoryStore struct {
	mu    sync.Mutex
	items *lru.Cache[string, memoryEntry]
	now   func() time.Time
}

// NewMemory creates a store holding at most size keys.
func NewMemory(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = 64
	}
	items, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{items: items, now: time.Now}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return "", nil
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items.Add(key, m.entry(value, ttl))
	return nil
}

func (m *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.items.Add(key, m.entry(value, ttl))
	return true, nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, key := range keys {
		if _, ok := m.lookup(key); ok {
			n++
		}
		m.items.Remove(key)
	}
	return n, nil
}

// lookup returns a live entry, evicting it when expired. Callers hold mu.
func (m *MemoryStore) lookup(key string) (memoryEntry, bool) {
	e, ok := m.items.Get(key)
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(m.now()) {
		m.items.Remove(key)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *MemoryStore) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}
