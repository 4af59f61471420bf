package session

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]map[string]string{}}
}

// Load implements [Store].
func (s *MemoryStore) Load(_ context.Context, id string) (map[string]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.sessions[id]

	return maps.Clone(values), ok, nil
}

// Save implements [Store].
func (s *MemoryStore) Save(_ context.Context, id string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = maps.Clone(values)

	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
