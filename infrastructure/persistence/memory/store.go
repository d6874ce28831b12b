package memory

import (
	"context"
	"strings"
	"sync"
)

// Store is a mutex-guarded in-memory key-value store. It backs local
// development and tests; a restart loses the cache, which only costs a
// refetch per kind.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		items: make(map[string][]byte),
	}
}

// Read returns the value for key, with found=false on a miss
func (s *Store) Read(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}

	// Copy so callers cannot mutate stored bytes.
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Write stores value under key, replacing any prior value
func (s *Store) Write(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = stored
	return nil
}

// Delete removes key; deleting an absent key is a no-op
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// ListKeys returns every stored key starting with prefix
func (s *Store) ListKeys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
