package spawnhooks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/comalice/spawnhooks"
	"github.com/comalice/spawnhooks/testutil"
)

type countingHandler struct {
	calls []*Tracker
}

func (h *countingHandler) TrackerDeactivated(t *Tracker) {
	h.calls = append(h.calls, t)
}

func TestNewTrackerContract(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	sched := testutil.NewFakeScheduler()
	obj := env.Spawn("BradleyAPC", "")
	h := &countingHandler{}

	tests := []struct {
		name    string
		target  Object
		every   time.Duration
		tag     string
		handler DeactivationHandler
		probe   LivenessProbe
		sched   Scheduler
		want    error
	}{
		{"nil target", nil, time.Second, "tag", h, env, sched, ErrNilTarget},
		{"zero interval", obj, 0, "tag", h, env, sched, ErrZeroInterval},
		{"negative interval", obj, -time.Second, "tag", h, env, sched, ErrZeroInterval},
		{"empty tag", obj, time.Second, "", h, env, sched, ErrEmptyTag},
		{"nil handler", obj, time.Second, "tag", nil, env, sched, ErrNilHandler},
		{"nil probe", obj, time.Second, "tag", h, nil, sched, ErrNilProbe},
		{"nil scheduler", obj, time.Second, "tag", h, env, nil, ErrNilScheduler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTracker(tt.target, tt.every, tt.tag, tt.handler, tt.probe, tt.sched)
			assert.Nil(t, tr)
			assert.ErrorIs(t, err, ErrContract)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, h.calls)
	assert.Equal(t, 0, sched.Pending())
}

func TestTrackerDeadOnArrival(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	sched := testutil.NewFakeScheduler()
	obj := env.Spawn("BradleyAPC", "")
	env.Kill(obj)
	h := &countingHandler{}

	tr, err := NewTracker(obj, time.Second, "tank", h, env, sched)
	require.NoError(t, err)

	require.Len(t, h.calls, 1)
	assert.Same(t, tr, h.calls[0])
	assert.False(t, tr.Active())
	assert.False(t, tr.Pending())
	assert.Equal(t, 0, sched.Pending())
}

func TestTrackerPollsUntilDead(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	sched := testutil.NewFakeScheduler()
	obj := env.Spawn("BradleyAPC", "")
	h := &countingHandler{}

	tr, err := NewTracker(obj, 15*time.Second, "tank", h, env, sched)
	require.NoError(t, err)
	assert.True(t, tr.Active())
	assert.True(t, tr.Pending())
	assert.Equal(t, uint64(1), tr.Checks())

	sched.Advance(14 * time.Second)
	assert.Equal(t, uint64(1), tr.Checks())

	sched.Advance(time.Second)
	assert.Equal(t, uint64(2), tr.Checks())
	sched.Advance(30 * time.Second)
	assert.Equal(t, uint64(4), tr.Checks())
	assert.Empty(t, h.calls)

	env.Kill(obj)
	sched.Advance(15 * time.Second)
	require.Len(t, h.calls, 1)
	assert.False(t, tr.Active())
	assert.Equal(t, 0, sched.Pending())

	sched.Advance(time.Hour)
	assert.Len(t, h.calls, 1)
	assert.Equal(t, uint64(5), tr.Checks())
}

func TestTrackerStopIdempotent(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	sched := testutil.NewFakeScheduler()
	obj := env.Spawn("CargoShip", "")
	h := &countingHandler{}

	tr, err := NewTracker(obj, time.Minute, "ship", h, env, sched)
	require.NoError(t, err)

	tr.Stop()
	tr.Stop()
	assert.Len(t, h.calls, 1)
	assert.False(t, tr.Pending())
	assert.Equal(t, 0, sched.Pending())

	assert.Equal(t, 0, sched.Advance(time.Hour))
	assert.Len(t, h.calls, 1)
}

func TestTrackerStopAfterNaturalDeath(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	sched := testutil.NewFakeScheduler()
	obj := env.Spawn("CargoShip", "")
	h := &countingHandler{}

	tr, err := NewTracker(obj, time.Second, "ship", h, env, sched)
	require.NoError(t, err)
	env.Kill(obj)
	sched.Advance(time.Second)
	require.Len(t, h.calls, 1)

	tr.Stop()
	assert.Len(t, h.calls, 1)
}

func TestTrackerAccessors(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	sched := testutil.NewFakeScheduler()
	obj := env.Spawn("CargoShip", "assets/content/vehicles/boats/cargoship/cargoshiptest.prefab")

	tr, err := NewTracker(obj, time.Minute, "ship", HandlerFunc(func(*Tracker) {}), env, sched)
	require.NoError(t, err)
	assert.Same(t, obj, tr.Target())
	assert.Equal(t, "ship", tr.Tag())
	assert.Equal(t, time.Minute, tr.Interval())
	assert.Nil(t, tr.Policy())
	assert.NotEqual(t, [16]byte{}, [16]byte(tr.ID()))
	assert.Contains(t, tr.String(), "ship[")
}
