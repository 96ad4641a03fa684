// Package sim is an in-process host: a world of entities that spawn, move,
// deactivate and get destroyed, with a driver that animates it on the
// registry's scheduler.
package sim

import (
	"fmt"
	"slices"
	"sync"

	"github.com/comalice/spawnhooks"
)

// Vec3 is a world position.
type Vec3 struct{ X, Y, Z float64 }

func (v Vec3) String() string { return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z) }

// Entity is a simulated world object. The pointer is the handle and stays a
// valid map key after the entity is destroyed.
type Entity struct {
	world    *World
	id       int
	typeName string
	prefab   string
	pos      Vec3

	active    bool
	destroyed bool
}

func (e *Entity) ID() int            { return e.id }
func (e *Entity) TypeName() string   { return e.typeName }
func (e *Entity) PrefabPath() string { return e.prefab }

// Location implements spawnhooks.Locator.
func (e *Entity) Location() string {
	e.world.mu.RLock()
	defer e.world.mu.RUnlock()
	return e.pos.String()
}

// Describe implements spawnhooks.Describer.
func (e *Entity) Describe() []string {
	e.world.mu.RLock()
	defer e.world.mu.RUnlock()
	flags := "active"
	switch {
	case e.destroyed:
		flags = "destroyed"
	case !e.active:
		flags = "inactive"
	}
	return []string{
		e.typeName,
		fmt.Sprintf("Id: %d", e.id),
		fmt.Sprintf("Prefab: %s", e.prefab),
		fmt.Sprintf("Position: %s", e.pos),
		fmt.Sprintf("Flags: %s", flags),
	}
}

// World is the simulated host. It is safe for concurrent use; subscribers
// are called outside the lock.
type World struct {
	mu       sync.RWMutex
	entities []*Entity
	nextID   int
	subs     []func(spawnhooks.Object)
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{nextID: 1}
}

// Subscribe registers fn for spawn notifications.
func (w *World) Subscribe(fn func(obj spawnhooks.Object)) {
	w.mu.Lock()
	w.subs = append(w.subs, fn)
	w.mu.Unlock()
}

// Spawn creates an active entity and notifies subscribers.
func (w *World) Spawn(typeName, prefab string, pos Vec3) *Entity {
	w.mu.Lock()
	e := &Entity{
		world:    w,
		id:       w.nextID,
		typeName: typeName,
		prefab:   prefab,
		pos:      pos,
		active:   true,
	}
	w.nextID++
	w.entities = append(w.entities, e)
	subs := slices.Clone(w.subs)
	w.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
	return e
}

// Destroy removes e from the world. Its handle stays usable.
func (w *World) Destroy(e *Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.active = false
	w.entities = slices.DeleteFunc(w.entities, func(x *Entity) bool { return x == e })
}

// SetActive toggles whether e is active in the hierarchy. Inactive entities
// are not live but are still enumerated.
func (w *World) SetActive(e *Entity, active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !e.destroyed {
		e.active = active
	}
}

// Move sets e's position.
func (w *World) Move(e *Entity, pos Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e.pos = pos
}

// IsLive implements spawnhooks.LivenessProbe: the handle is a world entity
// that is active and not destroyed.
func (w *World) IsLive(obj spawnhooks.Object) bool {
	e, ok := obj.(*Entity)
	if !ok || e == nil || e.world != w {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return e.active && !e.destroyed
}

// LiveObjects implements spawnhooks.Environment. It returns every entity not
// yet destroyed, including inactive ones.
func (w *World) LiveObjects() []spawnhooks.Object {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]spawnhooks.Object, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	return out
}

// Len returns the number of entities not yet destroyed.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}
