package descriptor

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/kailas-cloud/searchsync/internal/domain"
)

// Registry holds the descriptors of every registered type. It is built once at
// startup and passed to every component that needs it.
type Registry struct {
	mu           sync.RWMutex
	defaultIndex string
	types        map[string]Descriptor
}

// NewRegistry creates an empty registry with the process-wide default index.
func NewRegistry(defaultIndex string) *Registry {
	return &Registry{defaultIndex: defaultIndex, types: make(map[string]Descriptor)}
}

// DefaultIndex returns the index used by types that do not name one.
func (r *Registry) DefaultIndex() string { return r.defaultIndex }

// Register adds d, filling an unset index with the default. The stored descriptor is returned.
func (r *Registry) Register(d Descriptor) (Descriptor, error) {
	if d.name == "" {
		return Descriptor{}, fmt.Errorf("register: descriptor has no name: %w", domain.ErrInvalidFieldSpec)
	}
	if d.index == "" {
		d.index = r.defaultIndex
	}
	if d.index == "" {
		return Descriptor{}, fmt.Errorf("register %s: no index and no default index: %w", d.name, domain.ErrInvalidFieldSpec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[d.name]; ok {
		return Descriptor{}, fmt.Errorf("register %s: %w", d.name, domain.ErrTypeAlreadyRegistered)
	}
	r.types[d.name] = d
	return d, nil
}

// Get returns the descriptor registered for name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

// Require is Get returning domain.ErrUnknownType for unregistered names.
func (r *Registry) Require(name string) (Descriptor, error) {
	d, ok := r.Get(name)
	if !ok {
		return Descriptor{}, fmt.Errorf("type %q: %w", name, domain.ErrUnknownType)
	}
	return d, nil
}

// MustGet is Get panicking on unregistered names. Use it for wiring code only.
func (r *Registry) MustGet(name string) Descriptor {
	d, err := r.Require(name)
	if err != nil {
		panic(err)
	}
	return d
}

// All returns every descriptor sorted by type name.
func (r *Registry) All() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.types))
	for _, d := range r.types {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.name
	}
	return names
}

// Indexes returns the distinct index names in use, sorted.
func (r *Registry) Indexes() []string {
	var out []string
	for _, d := range r.All() {
		if !slices.Contains(out, d.index) {
			out = append(out, d.index)
		}
	}
	sort.Strings(out)
	return out
}

// InIndex returns the descriptors that write to index.
func (r *Registry) InIndex(index string) []Descriptor {
	var out []Descriptor
	for _, d := range r.All() {
		if d.index == index {
			out = append(out, d)
		}
	}
	return out
}
