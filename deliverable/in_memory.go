package deliverable

import (
	"sync"

	"github.com/hupe1980/agentcrew/core"
)

// InMemoryStore is a trivial in-process DeliverableStore implementation
// useful for tests, examples and single-process prototypes. It keeps all
// deliverables in a nested map guarded by an RWMutex. Data is copied on save
// and retrieval to avoid accidental external mutation of internal buffers.
//
// Layout: sessionID -> name -> raw bytes
type InMemoryStore struct {
	mu           sync.RWMutex
	deliverables map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory deliverable store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{deliverables: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the deliverable bytes for the given session
// and name. The input slice is copied before storage.
func (s *InMemoryStore) Save(sessionID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.deliverables[sessionID]; !exists {
		s.deliverables[sessionID] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.deliverables[sessionID][name] = cp
	return nil
}

// Get returns a copy of the stored deliverable bytes or ErrNotFound.
func (s *InMemoryStore) Get(sessionID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.deliverables[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	data, ok := m[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the deliverable names stored for the session. The slice is a
// snapshot and safe for caller mutation.
func (s *InMemoryStore) List(sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.deliverables[sessionID]
	if !ok {
		return []string{}, nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names, nil
}

// Delete removes the deliverable if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(sessionID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.deliverables[sessionID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[name]; !ok {
		return ErrNotFound
	}
	delete(m, name)
	return nil
}

// compile-time interface check
var _ core.DeliverableStore = (*InMemoryStore)(nil)
