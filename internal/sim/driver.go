package sim

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/comalice/spawnhooks"
)

// Kind is one spawnable catalog entry.
type Kind struct {
	Type     string
	Prefab   string
	Weight   int
	Lifetime time.Duration // mean; actual lifetimes are 0.5x to 1.5x
	// Vanish is the chance, in [0,1], that the entity deactivates instead
	// of being destroyed at the end of its lifetime.
	Vanish float64
}

// DefaultCatalog mixes tracked event entities with background noise.
func DefaultCatalog() []Kind {
	return []Kind{
		{Type: "BradleyAPC", Prefab: "assets/prefabs/npc/m2bradley/bradleyapc.prefab", Weight: 2, Lifetime: 2 * time.Minute},
		{Type: "CargoPlane", Prefab: "assets/prefabs/npc/cargo plane/cargo_plane.prefab", Weight: 3, Lifetime: 45 * time.Second},
		{Type: "CargoShip", Prefab: "assets/content/vehicles/boats/cargoship/cargoshiptest.prefab", Weight: 1, Lifetime: 5 * time.Minute},
		{Type: "CH47Helicopter", Prefab: "assets/prefabs/npc/ch47/ch47scientists.entity.prefab", Weight: 2, Lifetime: time.Minute},
		{Type: "BaseHelicopter", Prefab: "assets/prefabs/npc/patrol helicopter/patrolhelicopter.prefab", Weight: 2, Lifetime: 90 * time.Second, Vanish: 0.2},
		{Type: "HackableLockedCrate", Prefab: "assets/prefabs/deployable/chinooklockedcrate/codelockedhackablecrate_oilrig.prefab", Weight: 2, Lifetime: 2 * time.Minute},
		{Type: "Horse", Prefab: "assets/rust.ai/nextai/testridablehorse.prefab", Weight: 6, Lifetime: 3 * time.Minute},
		{Type: "LootContainer", Prefab: "assets/bundled/prefabs/radtown/crate_normal.prefab", Weight: 10, Lifetime: time.Minute},
	}
}

// DriverConfig configures a Driver.
type DriverConfig struct {
	Catalog    []Kind
	SpawnEvery time.Duration
	WorldSize  float64
	Seed       uint64
	Logger     *zap.Logger
}

// Driver spawns and retires entities on a scheduler. All its work runs in
// scheduler callbacks, so it shares the registry's execution context.
type Driver struct {
	world   *World
	sched   spawnhooks.Scheduler
	catalog []Kind
	total   int
	every   time.Duration
	size    float64
	rng     *rand.Rand
	log     *zap.Logger

	next    spawnhooks.Timer
	retire  map[*Entity]spawnhooks.Timer
	running bool
	spawned int
}

// NewDriver creates a stopped driver.
func NewDriver(world *World, sched spawnhooks.Scheduler, cfg DriverConfig) *Driver {
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = DefaultCatalog()
	}
	if cfg.SpawnEvery <= 0 {
		cfg.SpawnEvery = 5 * time.Second
	}
	if cfg.WorldSize <= 0 {
		cfg.WorldSize = 3000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	total := 0
	for _, k := range cfg.Catalog {
		total += max(k.Weight, 0)
	}
	return &Driver{
		world:   world,
		sched:   sched,
		catalog: cfg.Catalog,
		total:   total,
		every:   cfg.SpawnEvery,
		size:    cfg.WorldSize,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		log:     cfg.Logger,
		retire:  make(map[*Entity]spawnhooks.Timer),
	}
}

// Start schedules the first spawn. It must run on the scheduler's context.
func (d *Driver) Start() {
	if d.running || d.total == 0 {
		return
	}
	d.running = true
	d.next = d.sched.AfterFunc(d.every, d.tick)
}

// Stop cancels the spawn loop and every pending retirement.
func (d *Driver) Stop() {
	d.running = false
	if d.next != nil {
		d.next.Stop()
		d.next = nil
	}
	for e, t := range d.retire {
		t.Stop()
		delete(d.retire, e)
	}
}

// Spawned returns how many entities the driver has created.
func (d *Driver) Spawned() int { return d.spawned }

func (d *Driver) tick() {
	if !d.running {
		return
	}
	d.SpawnOne()
	d.next = d.sched.AfterFunc(d.every, d.tick)
}

// SpawnOne spawns a random catalog entry and schedules its end of life.
// It returns nil for an empty catalog.
func (d *Driver) SpawnOne() *Entity {
	if d.total == 0 {
		return nil
	}
	k := d.pick()
	pos := Vec3{
		X: (d.rng.Float64() - 0.5) * d.size,
		Y: d.rng.Float64() * 50,
		Z: (d.rng.Float64() - 0.5) * d.size,
	}
	e := d.world.Spawn(k.Type, k.Prefab, pos)
	d.spawned++
	life := time.Duration(float64(k.Lifetime) * (0.5 + d.rng.Float64()))
	vanish := d.rng.Float64() < k.Vanish
	d.retire[e] = d.sched.AfterFunc(life, func() {
		delete(d.retire, e)
		if vanish {
			d.world.SetActive(e, false)
		} else {
			d.world.Destroy(e)
		}
		d.log.Debug("entity retired", zap.String("type", k.Type), zap.Int("id", e.id), zap.Bool("vanished", vanish))
	})
	return e
}

func (d *Driver) pick() Kind {
	n := d.rng.IntN(d.total)
	for _, k := range d.catalog {
		if k.Weight <= 0 {
			continue
		}
		if n < k.Weight {
			return k
		}
		n -= k.Weight
	}
	return d.catalog[len(d.catalog)-1]
}
