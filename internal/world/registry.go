package world

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Entity is a simulated object tracked by the registry.
// Handles are assigned by the registry on Add.
type Entity interface {
	// Handle returns the registry-assigned identity handle (0 = unregistered)
	Handle() uint32

	// SetHandle assigns the identity handle (called by the registry)
	SetHandle(handle uint32)

	// IsAlive reports whether the entity still participates in simulation
	IsAlive() bool

	// Update advances the entity by dt seconds of simulated time
	Update(dt float64)
}

// EntityRegistry gives agents lifecycle visibility to the rest of the simulation.
type EntityRegistry interface {
	Add(e Entity) error
	Remove(e Entity)
}

// Registry is the in-memory entity registry. It owns handle assignment and
// drives per-entity updates each tick.
type Registry struct {
	entities sync.Map // map[uint32]Entity — handle → entity

	nextHandle  atomic.Uint32 // for generating unique handles
	entityCount atomic.Int32  // cached count of entities (O(1) access)
}

// NewRegistry creates a new entity registry.
func NewRegistry() *Registry {
	r := &Registry{}

	// Start handle counter from 100000 (lower range reserved for static objects)
	r.nextHandle.Store(100000)

	return r
}

// Add registers an entity and assigns its identity handle.
func (r *Registry) Add(e Entity) error {
	if h := e.Handle(); h != 0 {
		if _, ok := r.entities.Load(h); ok {
			return fmt.Errorf("entity %d already registered", h)
		}
	}

	handle := r.nextHandle.Add(1)
	e.SetHandle(handle)
	r.entities.Store(handle, e)
	r.entityCount.Add(1)

	slog.Debug("entity registered", "handle", handle)
	return nil
}

// Remove deregisters an entity. No-op if the entity was never registered.
func (r *Registry) Remove(e Entity) {
	handle := e.Handle()
	if handle == 0 {
		return
	}

	if _, ok := r.entities.LoadAndDelete(handle); !ok {
		return
	}
	r.entityCount.Add(-1)

	slog.Debug("entity deregistered", "handle", handle)
}

// Get returns the entity for a handle.
func (r *Registry) Get(handle uint32) (Entity, bool) {
	value, ok := r.entities.Load(handle)
	if !ok {
		return nil, false
	}
	return value.(Entity), true
}

// UpdateAll advances every registered entity by dt seconds.
// There is no guaranteed ordering between entities within one tick.
func (r *Registry) UpdateAll(dt float64) {
	r.entities.Range(func(key, value any) bool {
		value.(Entity).Update(dt)
		return true
	})
}

// Count returns number of registered entities (O(1) cached count).
// The count is cached atomically and updated on Add/Remove to avoid
// an O(N) Range() on sync.Map.
func (r *Registry) Count() int {
	return int(r.entityCount.Load())
}
