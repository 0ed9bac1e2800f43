package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/project"
)

// Store implements ports.ProjectStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*project.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*project.Document),
	}
}

// Save persists the document in memory.
func (s *Store) Save(ctx context.Context, name string, doc *project.Document) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := doc.Clone()
	copied.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load retrieves the document from memory.
func (s *Store) Load(ctx context.Context, name string) (*project.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[name]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer
	return doc.Clone(), nil
}

// Delete removes the project.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored project names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
