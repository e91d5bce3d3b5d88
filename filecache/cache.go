package filecache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// A Provider supplies artifacts by name.
type Provider[T any] interface {
	// Stat returns the modification time of name, or an error if name does not exist.
	Stat(name string) (time.Time, error)

	// Load reads and prepares the artifact name.
	Load(name string) (T, error)
}

// An Entry is what a Cache knows about a name.
type Entry[T any] struct {
	// IsFile is false when the artifact does not exist.
	IsFile bool

	// IsError is true when the artifact exists but could not be loaded.
	IsError bool

	ModTime time.Time
	Payload T
	Err     error
}

// Outcome describes how a lookup was served.
type Outcome string

const (
	Absent Outcome = "absent"
	Hit    Outcome = "hit"
	Miss   Outcome = "miss"
	Reload Outcome = "reload"
)

// An Observer is notified of every lookup made against a Cache.
type Observer func(kind string, o Outcome)

// A Cache holds Entries for one kind of artifact.
type Cache[T any] struct {
	kind     string
	provider Provider[T]
	observe  Observer

	mu      sync.RWMutex
	entries map[string]Entry[T]
	group   singleflight.Group
}

// New constructs a Cache of kind reading artifacts from p.
func New[T any](kind string, p Provider[T], opts ...OptFn) *Cache[T] {
	c := &Cache[T]{
		kind:     kind,
		provider: p,
		observe:  func(string, Outcome) {},
		entries:  make(map[string]Entry[T]),
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.observer != nil {
		c.observe = o.observer
	}

	return c
}

// Get returns the Entry for name.
//
// In cacheMode, a known Entry is returned as is.
// Otherwise, name is stat'ed and reloaded if it changed since it was last loaded.
// Errors loading name are recorded on the Entry and not returned.
func (c *Cache[T]) Get(name string, cacheMode bool) Entry[T] {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()

	if ok && cacheMode {
		c.observe(c.kind, Hit)
		return e
	}

	mod, err := c.provider.Stat(name)
	if err != nil {
		absent := Entry[T]{}
		c.store(name, absent)
		c.observe(c.kind, Absent)
		return absent
	}

	if ok && e.IsFile && e.ModTime.Equal(mod) {
		c.observe(c.kind, Hit)
		return e
	}

	v, _, _ := c.group.Do(name, func() (any, error) {
		entry := Entry[T]{IsFile: true, ModTime: mod}
		payload, err := c.provider.Load(name)
		if err != nil {
			entry.IsError = true
			entry.Err = err
		} else {
			entry.Payload = payload
		}

		c.store(name, entry)
		return entry, nil
	})

	if ok && e.IsFile {
		c.observe(c.kind, Reload)
	} else {
		c.observe(c.kind, Miss)
	}

	return v.(Entry[T])
}

// Evict forgets name.
func (c *Cache[T]) Evict(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

// Reset forgets every name.
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]Entry[T])
	c.mu.Unlock()
}

// Len reports the number of names the Cache knows about.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[T]) store(name string, e Entry[T]) {
	c.mu.Lock()
	c.entries[name] = e
	c.mu.Unlock()
}
