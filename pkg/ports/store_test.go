package ports_test

import (
	"context"
	"slices"
	"testing"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/ports"
	"github.com/aretw0/mbtassist/pkg/project"
)

// MockStore is a map-backed ProjectStore used to check the contract itself.
type MockStore struct {
	data map[string]*project.Document
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*project.Document),
	}
}

func (m *MockStore) Save(ctx context.Context, name string, doc *project.Document) error {
	m.data[name] = doc.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, name string) (*project.Document, error) {
	doc, ok := m.data[name]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return doc.Clone(), nil
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	delete(m.data, name)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func TestProjectStore_Contract(t *testing.T) {
	ports.RunProjectStoreContract(t, NewMockStore())
}
