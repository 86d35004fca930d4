package reg

import "sync"

type (
	// Registry holds one value per key together with a version that is bumped
	// on every invalidation.
	Registry[V any] struct {
		mu      sync.RWMutex
		entries map[int64]*entry[V]
	}

	entry[V any] struct {
		value   V
		loaded  bool
		version uint64
	}
)

func New[V any]() *Registry[V] {
	return &Registry[V]{entries: map[int64]*entry[V]{}}
}

// Get returns the cached value and the current version of the key.
func (r *Registry[V]) Get(id int64) (V, uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok || !e.loaded {
		var zero V
		if ok {
			return zero, e.version, false
		}
		return zero, 0, false
	}
	return e.value, e.version, true
}

func (r *Registry[V]) Version(id int64) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[id]; ok {
		return e.version
	}
	return 0
}

// SetIfVersion stores value only if no invalidation happened since version was read.
func (r *Registry[V]) SetIfVersion(id int64, version uint64, value V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		if version != 0 {
			return false
		}
		r.entries[id] = &entry[V]{value: value, loaded: true}
		return true
	}
	if e.version != version {
		return false
	}
	e.value = value
	e.loaded = true
	return true
}

func (r *Registry[V]) Invalidate(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &entry[V]{}
		r.entries[id] = e
	}
	var zero V
	e.value = zero
	e.loaded = false
	e.version++
}
