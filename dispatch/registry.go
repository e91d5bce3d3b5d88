package dispatch

import (
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/xy-planning-network/signpost/filecache"
	"github.com/xy-planning-network/signpost/route"
)

var _ filecache.Provider[Controller] = (*Registry)(nil)

// A Factory builds a Controller when it is first needed.
type Factory func() (Controller, error)

type registration struct {
	factory Factory
	modTime time.Time
}

// A Registry holds the Controllers of an Engine by module name,
// the path of the module from the view root without an extension.
//
// Registry implements filecache.Provider: registering a Controller again
// advances its modification time, so caches not running in cache mode pick it up.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
	now     func() time.Time
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]registration),
		now:     time.Now,
	}
}

// Register stores c under name, replacing any Controller already there.
func (r *Registry) Register(name string, c Controller) {
	r.RegisterFactory(name, func() (Controller, error) { return c, nil })
}

// RegisterFactory stores f under name, replacing any Controller already there.
// f is called whenever a cache loads name.
func (r *Registry) RegisterFactory(name string, f Factory) {
	name = route.Trim(name)
	if name == "" || f == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	mod := r.now()
	if prev, ok := r.entries[name]; ok && !mod.After(prev.modTime) {
		mod = prev.modTime.Add(time.Nanosecond)
	}

	r.entries[name] = registration{factory: f, modTime: mod}
}

// Unregister removes name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, route.Trim(name))
}

// Names lists every registered module name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}

	return names
}

// Stat returns when name was last registered.
func (r *Registry) Stat(name string) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[route.Trim(name)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: controller %q", fs.ErrNotExist, name)
	}

	return reg.modTime, nil
}

// Load builds the Controller registered under name.
//
// A Broken Controller, or a Factory returning an error, fails to load.
func (r *Registry) Load(name string) (Controller, error) {
	r.mu.RLock()
	reg, ok := r.entries[route.Trim(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: controller %q", fs.ErrNotExist, name)
	}

	c, err := reg.factory()
	if err != nil {
		return nil, fmt.Errorf("loading controller %q: %w", name, err)
	}

	if b, ok := c.(Broken); ok {
		return nil, fmt.Errorf("loading controller %q: %w", name, b)
	}

	return c, nil
}
