package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/vitrine/pkg/entity"
)

// ErrEntityNotFound is returned when no entity is registered under a name.
var ErrEntityNotFound = errors.New("entity not found")

// Registry manages the available entities by name.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*entity.Entity
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*entity.Entity),
	}
}

// Register adds an entity under its own name.
// If an entity with the same name exists, it is overwritten.
func (r *Registry) Register(e *entity.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[e.Name()] = e
}

// Lookup returns the entity registered under name.
func (r *Registry) Lookup(name string) (*entity.Entity, error) {
	r.mu.RLock()
	e, ok := r.entities[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, name)
	}
	return e, nil
}

// Names lists the registered entity names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Represent looks up name and renders value with it.
func (r *Registry) Represent(name string, value any, opts entity.Options) (any, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Represent(value, opts)
}

// Ref is a Presenter that resolves its entity by name at render time. It lets
// declarations refer to entities registered later, or to themselves.
type Ref struct {
	Registry *Registry
	Name     string
}

// Represent implements entity.Presenter.
func (ref Ref) Represent(value any, opts entity.Options) (any, error) {
	return ref.Registry.Represent(ref.Name, value, opts)
}

// LoadAll builds every registered entity and joins their configuration errors.
func (r *Registry) LoadAll() error {
	var errs []error
	for _, name := range r.Names() {
		e, err := r.Lookup(name)
		if err != nil {
			continue
		}
		if err := e.Load(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
