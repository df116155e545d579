package cache

import (
	"context"
	"sync"

	"github.com/jonwraymond/credcache/keyschema"
)

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]keyschema.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]keyschema.Record),
	}
}

// Get retrieves a record. Returns (nil, false) on miss.
func (s *MemoryStore) Get(_ context.Context, key string) (keyschema.Record, bool) {
	s.mu.RLock()
	rec, ok := s.entries[key]
	s.mu.RUnlock()
	return rec, ok
}

// Set stores a record.
func (s *MemoryStore) Set(_ context.Context, key string, rec keyschema.Record) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[key] = rec
	s.mu.Unlock()
	return nil
}

// Delete removes a record. Idempotent - no error on miss.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Keys returns a snapshot of the stored keys.
func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// Clear removes every record.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]keyschema.Record)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
