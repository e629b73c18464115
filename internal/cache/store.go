// Package cache memoizes expensive engine computations behind a pluggable key-value store.
package cache

import (
	"context"
	"sync"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Entry struct {
	Key        string
	Value      []byte
	InsertedAt time.Time
	ExpiresAt  time.Time
}

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Entry
	nowFn func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Entry),
		nowFn: time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := s.nowFn()

	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !now.Before(e.ExpiresAt) {
		s.mu.Lock()
		if current, exists := s.items[key]; exists && !now.Before(current.ExpiresAt) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return e.Value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := s.nowFn()

	s.mu.Lock()
	s.items[key] = Entry{
		Key:        key,
		Value:      append([]byte(nil), value...),
		InsertedAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.nowFn()
	removed := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.items {
		if !now.Before(e.ExpiresAt) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
