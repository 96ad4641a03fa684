package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/spawnhooks/testutil"
)

func TestDriverSpawnsOnSchedule(t *testing.T) {
	w := NewWorld()
	sched := testutil.NewFakeScheduler()
	d := NewDriver(w, sched, DriverConfig{SpawnEvery: time.Second, Seed: 7})

	d.Start()
	d.Start()
	assert.Equal(t, 0, d.Spawned())

	sched.Advance(10 * time.Second)
	assert.Equal(t, 10, d.Spawned())
	assert.Equal(t, 10, w.Len())

	d.Stop()
	assert.Equal(t, 0, sched.Pending())
	sched.Advance(time.Hour)
	assert.Equal(t, 10, d.Spawned())
	assert.Equal(t, 10, w.Len(), "stopped driver retires nothing")
}

func TestDriverRetires(t *testing.T) {
	w := NewWorld()
	sched := testutil.NewFakeScheduler()
	d := NewDriver(w, sched, DriverConfig{
		Catalog: []Kind{
			{Type: "CargoPlane", Weight: 1, Lifetime: time.Minute},
			{Type: "BaseHelicopter", Weight: 1, Lifetime: time.Minute, Vanish: 1},
		},
		Seed: 1,
	})

	var spawned []*Entity
	for range 20 {
		spawned = append(spawned, d.SpawnOne())
	}
	sched.Advance(90 * time.Second)

	for _, e := range spawned {
		require.False(t, w.IsLive(e), "%s should be retired", e.TypeName())
		if e.TypeName() == "BaseHelicopter" {
			assert.False(t, e.destroyed, "vanishing kinds are deactivated")
		} else {
			assert.True(t, e.destroyed)
		}
	}
}

func TestDriverDeterministic(t *testing.T) {
	types := func(seed uint64) []string {
		w := NewWorld()
		d := NewDriver(w, testutil.NewFakeScheduler(), DriverConfig{Seed: seed})
		var out []string
		for range 50 {
			out = append(out, d.SpawnOne().TypeName())
		}
		return out
	}
	assert.Equal(t, types(42), types(42))
	assert.NotEqual(t, types(42), types(43))
}

func TestDriverEmptyCatalog(t *testing.T) {
	d := NewDriver(NewWorld(), testutil.NewFakeScheduler(), DriverConfig{
		Catalog: []Kind{{Type: "Ghost", Weight: 0}},
	})
	assert.Nil(t, d.SpawnOne())
	d.Start()
	assert.Equal(t, 0, d.Spawned())
}
