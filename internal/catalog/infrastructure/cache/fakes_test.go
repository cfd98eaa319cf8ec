package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
)

// stuckStore never expires anything, like a store that lost its TTLs.
type stuckStore struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failSet bool
}

func newStuckStore() *stuckStore {
	return &stuckStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stuckStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *stuckStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return errors.New("store read-only")
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *stuckStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return true, nil
}

func (s *stuckStore) Delete(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			n++
			delete(s.data, k)
		}
	}
	return n, nil
}

func (s *stuckStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

type fakeFetcher struct {
	mu       sync.Mutex
	calls    int
	snapshot *domain.CatalogSnapshot
	err      error
	onFetch  func()
}

func (f *fakeFetcher) FetchCatalog(_ context.Context, currency string) (*domain.CatalogSnapshot, error) {
	f.mu.Lock()
	f.calls++
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
