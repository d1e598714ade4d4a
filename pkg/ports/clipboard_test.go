package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/ports"
)

// MockStore is a map-backed ClipboardStore used to exercise the contract suite itself.
type MockStore struct {
	data map[string]*domain.ClipboardPayload
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]*domain.ClipboardPayload)}
}

func (m *MockStore) Put(ctx context.Context, key string, p *domain.ClipboardPayload) error {
	m.data[key] = p.Clone()
	return nil
}

func (m *MockStore) Get(ctx context.Context, key string) (*domain.ClipboardPayload, error) {
	p, ok := m.data[key]
	if !ok {
		return nil, domain.ErrClipboardEmpty
	}
	return p.Clone(), nil
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestClipboardStore_Contract(t *testing.T) {
	ports.RunClipboardStoreContract(t, NewMockStore())
}

func TestIDGeneratorFunc(t *testing.T) {
	n := 0
	gen := ports.IDGeneratorFunc(func() string {
		n++
		return string(rune('a' + n - 1))
	})
	if got := gen.Next(); got != "a" {
		t.Errorf("Next() = %q, want a", got)
	}
	if got := gen.Next(); got != "b" {
		t.Errorf("Next() = %q, want b", got)
	}
}
