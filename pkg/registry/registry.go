package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/schema"
)

// DefaultsFunc builds the initial property bag of a freshly added node.
type DefaultsFunc func() domain.PropertyBag

// Kind describes one module kind known to the editor.
type Kind struct {
	Name     string
	Defaults DefaultsFunc
	// Schema optionally types well-known fields of the kind's property bag.
	Schema schema.Schema
}

// Registry manages the available module kinds.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]Kind),
	}
}

// Register adds a kind to the registry.
// If a kind with the same name exists, it is overwritten.
func (r *Registry) Register(k Kind) error {
	if k.Name == "" {
		return fmt.Errorf("%w: empty kind name", domain.ErrInvalidName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[k.Name] = k
	return nil
}

// RegisterDefaults is a shorthand for kinds that only need default data.
func (r *Registry) RegisterDefaults(name string, fn DefaultsFunc) error {
	return r.Register(Kind{Name: name, Defaults: fn})
}

// Lookup returns the registered kind.
func (r *Registry) Lookup(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}

// Defaults returns a fresh default bag for the kind. Unknown kinds, or kinds
// without a factory, get an empty bag.
func (r *Registry) Defaults(name string) domain.PropertyBag {
	k, ok := r.Lookup(name)
	if !ok || k.Defaults == nil {
		return domain.PropertyBag{}
	}
	bag := k.Defaults().Clone()
	if bag == nil {
		bag = domain.PropertyBag{}
	}
	return bag
}

// Validate checks the present fields of data against the kind's schema.
// Kinds without a schema accept everything.
func (r *Registry) Validate(name string, data domain.PropertyBag) error {
	k, ok := r.Lookup(name)
	if !ok || len(k.Schema) == 0 {
		return nil
	}
	return schema.ValidatePartial(k.Schema, data)
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
