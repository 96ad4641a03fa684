package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/spawnhooks"
	"github.com/comalice/spawnhooks/testutil"
)

type player bool

func (p player) IsAdmin() bool { return bool(p) }

type debugFlag struct{ on bool }

func (d *debugFlag) DebugEnabled() bool { return d.on }
func (d *debugFlag) ToggleDebug() bool {
	d.on = !d.on
	return d.on
}

type fixture struct {
	env   *testutil.FakeEnvironment
	sched *testutil.FakeScheduler
	reg   *spawnhooks.Registry
	debug *debugFlag
	con   *Console
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		env:   testutil.NewFakeEnvironment(),
		sched: testutil.NewFakeScheduler(),
		debug: &debugFlag{},
	}
	table := spawnhooks.NewTableBuilder().
		Track("CargoShip").Every(time.Minute).
		Track("BradleyAPC").Every(15 * time.Second).
		MustBuild()
	reg, err := spawnhooks.NewRegistry(f.env, table, spawnhooks.WithScheduler(f.sched))
	require.NoError(t, err)
	f.reg = reg
	f.con = New(reg, f.env, f.debug, nil)
	return f
}

func TestExecIgnoresOtherCommands(t *testing.T) {
	f := newFixture(t)
	for _, line := range []string{"", "   ", "status", "spawnsx"} {
		_, handled := f.con.Exec(nil, line)
		assert.False(t, handled, "%q", line)
	}
}

func TestNonAdminGetsNothing(t *testing.T) {
	f := newFixture(t)
	for _, line := range []string{CmdHelp, CmdFind + " cargo", CmdDebug, CmdReload} {
		reply, handled := f.con.Exec(player(false), line)
		assert.True(t, handled)
		assert.Empty(t, reply)
	}
	assert.False(t, f.debug.on)
	assert.False(t, f.reg.Initialized())
}

func TestHelp(t *testing.T) {
	f := newFixture(t)
	reply, handled := f.con.Exec(player(true), "spawns")
	require.True(t, handled)
	assert.Contains(t, reply, "spawns.find [name] - search spawned entity")
	assert.Contains(t, reply, "spawns.debug - toggle debug mode (Disabled)")

	f.debug.on = true
	reply, _ = f.con.Exec(nil, "spawns.find")
	assert.Contains(t, reply, "(Enabled)")
}

func TestDebugToggle(t *testing.T) {
	f := newFixture(t)
	reply, _ := f.con.Exec(nil, "spawns.debug")
	assert.Equal(t, "Debug enabled", reply)
	reply, _ = f.con.Exec(nil, "SPAWNS.DEBUG")
	assert.Equal(t, "Debug disabled", reply)
}

func TestReload(t *testing.T) {
	f := newFixture(t)
	f.env.Spawn("CargoShip", "assets/content/vehicles/boats/cargoship/cargoshiptest.prefab")
	f.env.Spawn("Horse", "")

	reply, handled := f.con.Exec(nil, "spawns.reload")
	require.True(t, handled)
	assert.Equal(t, "Spawns reloaded: 1 tracked, 1 added", reply)
	assert.True(t, f.reg.Initialized())
}

func TestFindOrderAndDedup(t *testing.T) {
	f := newFixture(t)
	carrier := f.env.Spawn("CarrierPigeon", "assets/birds/pigeon.prefab")
	ship := f.env.Spawn("CargoShip", "assets/content/vehicles/boats/cargoship/cargoshiptest.prefab")
	plane := f.env.Spawn("CargoPlane", "assets/prefabs/npc/cargo plane/cargo_plane.prefab")
	scrap := f.env.Spawn("ScrapTransportHelicopter", "assets/content/vehicles/scrap heli carrier/car.prefab")
	dead := f.env.Spawn("CarDead", "")
	f.env.Kill(dead)

	found := f.con.Find("CAR")
	assert.Equal(t, []spawnhooks.Object{carrier, ship, plane, scrap}, found)

	found = f.con.Find("cargo_")
	assert.Equal(t, []spawnhooks.Object{plane}, found)
}

func TestFindReply(t *testing.T) {
	f := newFixture(t)
	f.reg.Initialize(false)
	ship := f.env.Spawn("CargoShip", "cargoshiptest.prefab")
	require.True(t, f.reg.OnSpawned(ship))

	reply, _ := f.con.Exec(nil, "spawns.find cargoship")
	assert.Equal(t, "CargoShip\n  Id: 1\n  Prefab: cargoshiptest.prefab\n  Position: (1.0, 0.0, 0.0)\n  Tag: CargoShip", reply)

	reply, _ = f.con.Exec(nil, "spawns.find zeppelin")
	assert.Equal(t, `No entities matching "zeppelin"`, reply)
}
