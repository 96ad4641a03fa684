package testutil

import (
	"fmt"

	"github.com/comalice/spawnhooks"
)

// FakeObject is an in-memory entity. Its pointer is the handle.
type FakeObject struct {
	ID     int
	Type   string
	Prefab string
	Pos    string
	Live   bool
}

func (o *FakeObject) TypeName() string   { return o.Type }
func (o *FakeObject) PrefabPath() string { return o.Prefab }
func (o *FakeObject) Location() string   { return o.Pos }

// Describe implements spawnhooks.Describer.
func (o *FakeObject) Describe() []string {
	return []string{
		o.Type,
		fmt.Sprintf("Id: %d", o.ID),
		fmt.Sprintf("Prefab: %s", o.Prefab),
		fmt.Sprintf("Position: %s", o.Pos),
	}
}

// FakeEnvironment is a spawnhooks.Environment over FakeObjects.
type FakeEnvironment struct {
	objects []*FakeObject
	nextID  int
	probes  int
}

func NewFakeEnvironment() *FakeEnvironment {
	return &FakeEnvironment{nextID: 1}
}

// Spawn creates a live object. It does not notify anything; callers pass the
// object to Registry.OnSpawned themselves.
func (e *FakeEnvironment) Spawn(typeName, prefab string) *FakeObject {
	o := &FakeObject{
		ID:     e.nextID,
		Type:   typeName,
		Prefab: prefab,
		Pos:    fmt.Sprintf("(%d.0, 0.0, 0.0)", e.nextID),
		Live:   true,
	}
	e.nextID++
	e.objects = append(e.objects, o)
	return o
}

// Kill marks the object dead. The handle remains valid.
func (e *FakeEnvironment) Kill(o *FakeObject) {
	o.Live = false
}

// IsLive implements spawnhooks.LivenessProbe.
func (e *FakeEnvironment) IsLive(obj spawnhooks.Object) bool {
	e.probes++
	o, ok := obj.(*FakeObject)
	return ok && o != nil && o.Live
}

// LiveObjects implements spawnhooks.Environment. Dead objects are included
// on purpose to exercise the caller's liveness filtering.
func (e *FakeEnvironment) LiveObjects() []spawnhooks.Object {
	out := make([]spawnhooks.Object, 0, len(e.objects))
	for _, o := range e.objects {
		out = append(out, o)
	}
	return out
}

// Probes returns how many liveness checks have been made.
func (e *FakeEnvironment) Probes() int { return e.probes }
