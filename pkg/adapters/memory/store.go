package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Store implements ports.ClipboardStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.ClipboardPayload
	mu   sync.RWMutex
}

// NewStore creates a new in-memory clipboard store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.ClipboardPayload),
	}
}

// Put stores a deep copy of the payload.
func (s *Store) Put(ctx context.Context, key string, payload *domain.ClipboardPayload) error {
	copied := payload.Clone()
	if copied == nil {
		copied = &domain.ClipboardPayload{Nodes: []domain.Node{}, Edges: []domain.Edge{}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Get returns a copy so callers cannot mutate the stored payload.
func (s *Store) Get(ctx context.Context, key string) (*domain.ClipboardPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[key]
	if !ok {
		return nil, domain.ErrClipboardEmpty
	}
	return p.Clone(), nil
}

// Delete removes the payload.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the keys holding a payload, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
