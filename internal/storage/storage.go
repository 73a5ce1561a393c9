package storage

import (
	"maps"
	"slices"
	"sync"

	"github.com/eugenenazirov/envs/internal/coerce"
)

// Entry is a registered variable: its resolved string value and declared type.
type Entry struct {
	Value string
	Type  coerce.Kind
}

// Storage provides access to registered entries.
type Storage interface {
	Get(key string) (Entry, bool)
	Put(key string, entry Entry)
	Keys() []string
	Snapshot() map[string]Entry
}

// MemoryStorage keeps entries in-memory and guards access with a RWMutex.
// Value and type live in one record, so a key never has one without the other.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStorage returns an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]Entry),
	}
}

// Get returns the entry registered under key.
func (s *MemoryStorage) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Put stores entry under key, replacing any previous entry.
func (s *MemoryStorage) Put(key string, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry
}

// Keys returns the registered keys in sorted order.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.entries))
}

// Snapshot returns a copy of every entry.
func (s *MemoryStorage) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.entries)
}
