// Package benchmarks provides shared helpers for registry and loop
// benchmarks.
package benchmarks

import (
	"fmt"
	"time"

	"github.com/comalice/spawnhooks"
	"github.com/comalice/spawnhooks/testutil"
)

// GenTable creates a table of n type-name policies followed by n prefab
// policies, cycling poll intervals between 5 and 60 seconds.
func GenTable(n int) *spawnhooks.Table {
	if n < 1 {
		n = 1
	}
	b := spawnhooks.NewTableBuilder()
	for i := 0; i < n; i++ {
		b.Track(fmt.Sprintf("Entity%d", i)).Every(time.Duration(5+i%12*5) * time.Second)
	}
	for i := 0; i < n; i++ {
		b.Track(fmt.Sprintf("assets/prefabs/gen/entity%d.prefab", i)).Every(30 * time.Second)
	}
	return b.MustBuild()
}

// Population spawns count objects spread over the table's type names.
// Every fifth object matches no policy.
func Population(env *testutil.FakeEnvironment, policies, count int) []*testutil.FakeObject {
	out := make([]*testutil.FakeObject, 0, count)
	for i := 0; i < count; i++ {
		typ := fmt.Sprintf("Entity%d", i%policies)
		if i%5 == 4 {
			typ = "Unmatched"
		}
		out = append(out, env.Spawn(typ, fmt.Sprintf("assets/prefabs/gen/other%d.prefab", i)))
	}
	return out
}

// NewRegistry builds an initialized registry over fakes.
func NewRegistry(table *spawnhooks.Table, sink spawnhooks.EventSink) (*spawnhooks.Registry, *testutil.FakeEnvironment, *testutil.FakeScheduler) {
	env := testutil.NewFakeEnvironment()
	sched := testutil.NewFakeScheduler()
	reg, err := spawnhooks.NewRegistry(env, table, spawnhooks.WithScheduler(sched), spawnhooks.WithSink(sink))
	if err != nil {
		panic(err)
	}
	reg.Initialize(false)
	return reg, env, sched
}
