package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/spawnhooks"
	"github.com/comalice/spawnhooks/testutil"
)

func TestWorldLiveness(t *testing.T) {
	w := NewWorld()
	var notified []spawnhooks.Object
	w.Subscribe(func(obj spawnhooks.Object) { notified = append(notified, obj) })

	heli := w.Spawn("BaseHelicopter", "patrolhelicopter.prefab", Vec3{1, 2, 3})
	ship := w.Spawn("CargoShip", "cargoshiptest.prefab", Vec3{})
	assert.Equal(t, []spawnhooks.Object{heli, ship}, notified)
	assert.True(t, w.IsLive(heli))
	assert.Equal(t, "(1.0, 2.0, 3.0)", heli.Location())

	w.SetActive(heli, false)
	assert.False(t, w.IsLive(heli))
	assert.Len(t, w.LiveObjects(), 2, "inactive entities are still enumerated")
	w.SetActive(heli, true)
	assert.True(t, w.IsLive(heli))

	w.Destroy(ship)
	w.Destroy(ship)
	assert.False(t, w.IsLive(ship))
	assert.Equal(t, 1, w.Len())
	w.SetActive(ship, true)
	assert.False(t, w.IsLive(ship), "destroyed entities cannot be reactivated")

	other := NewWorld()
	assert.False(t, other.IsLive(heli))
	assert.False(t, w.IsLive(nil))
	assert.False(t, w.IsLive(testutil.NewFakeEnvironment().Spawn("CargoShip", "")))
}

func TestEntityDescribe(t *testing.T) {
	w := NewWorld()
	e := w.Spawn("CargoPlane", "cargo_plane.prefab", Vec3{X: 10})
	w.Move(e, Vec3{X: 20, Y: 1})
	assert.Equal(t, []string{
		"CargoPlane",
		"Id: 1",
		"Prefab: cargo_plane.prefab",
		"Position: (20.0, 1.0, 0.0)",
		"Flags: active",
	}, e.Describe())

	w.Destroy(e)
	require.Len(t, e.Describe(), 5)
	assert.Equal(t, "Flags: destroyed", e.Describe()[4])
}

func TestWorldDrivesRegistry(t *testing.T) {
	w := NewWorld()
	sched := testutil.NewFakeScheduler()
	sink := &testutil.RecordingSink{}
	table := spawnhooks.NewTableBuilder().Track("BaseHelicopter").Every(30 * time.Second).MustBuild()
	reg, err := spawnhooks.NewRegistry(w, table, spawnhooks.WithScheduler(sched), spawnhooks.WithSink(sink))
	require.NoError(t, err)
	reg.Initialize(false)
	w.Subscribe(func(obj spawnhooks.Object) { reg.OnSpawned(obj) })

	heli := w.Spawn("BaseHelicopter", "", Vec3{})
	assert.Equal(t, 1, reg.Len())

	w.SetActive(heli, false)
	sched.Advance(30 * time.Second)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 1, sink.Count(spawnhooks.HookGroupExhausted))
}
