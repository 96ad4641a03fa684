// Package spawnhooks tracks a dynamic population of host-owned objects and
// emits synthetic added/removed/group-exhausted hook events for the ones that
// match a configured category.
//
// The host only announces spawns. Disappearance is inferred by polling each
// tracked object's liveness on a per-category interval, so removal events are
// eventually consistent, bounded by that interval.
//
// All Registry and Tracker methods must run on a single execution context
// (see package realtime). Nothing in this package takes locks.
package spawnhooks

import (
	"errors"
	"time"
)

// Object is a handle to an entity owned by the host environment.
// Handles are used as map keys, so implementations must be comparable
// (typically a pointer) and must stay comparable after the entity dies.
type Object interface {
	TypeName() string
	PrefabPath() string
}

// Describer is implemented by objects that can render console detail lines.
type Describer interface {
	Describe() []string
}

// Locator is implemented by objects that can report their world position.
type Locator interface {
	Location() string
}

// LivenessProbe reports whether a handle still refers to a valid, active,
// non-destroyed entity.
type LivenessProbe interface {
	IsLive(obj Object) bool
}

// LivenessFunc adapts a function to LivenessProbe.
type LivenessFunc func(obj Object) bool

func (f LivenessFunc) IsLive(obj Object) bool { return f(obj) }

// Environment is the pull side of the host: liveness plus enumeration.
// Both are best-effort; an enumerated object may already be dead.
type Environment interface {
	LivenessProbe
	LiveObjects() []Object
}

// Timer is a pending deferred callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Scheduler runs deferred callbacks on the single execution context.
// Stop on the returned Timer must take effect synchronously.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// ErrContract is wrapped by every tracker construction contract violation.
var ErrContract = errors.New("tracker contract violation")

var (
	ErrNilTarget    = errors.New("target is nil")
	ErrZeroInterval = errors.New("poll interval must be positive")
	ErrEmptyTag     = errors.New("tag is empty")
	ErrNilHandler   = errors.New("deactivation handler is nil")
	ErrNilScheduler = errors.New("scheduler is nil")
	ErrNilProbe     = errors.New("liveness probe is nil")
)
