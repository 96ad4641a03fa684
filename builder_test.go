package spawnhooks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/comalice/spawnhooks"
)

func TestTableBuilder(t *testing.T) {
	table, err := NewTableBuilder().
		Track("BradleyAPC").Every(15 * time.Second).OnAdded("OnTankSpawned").OnRemoved("OnTankRemoved").
		Track("CargoShip").Every(time.Minute).OnGroupExhausted("OnAllCargoGone").
		Build()
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	ps := table.Policies()
	assert.Equal(t, "BradleyAPC", ps[0].Name)
	assert.Equal(t, 15*time.Second, ps[0].PollInterval)
	assert.Equal(t, "OnTankSpawned", ps[0].AddedHook)
	assert.Equal(t, "OnAllCargoGone", ps[1].GroupExhaustedHook)
}

func TestTableBuilderReusesPolicy(t *testing.T) {
	b := NewTableBuilder()
	b.Track("Foo").Every(time.Second)
	b.Track("Bar").Every(time.Second)
	b.Track("foo").Every(5 * time.Second)

	table := b.MustBuild()
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Foo", table.Policies()[0].Name)
	assert.Equal(t, 5*time.Second, table.Policies()[0].PollInterval)
}

func TestTableBuilderValidation(t *testing.T) {
	_, err := NewTableBuilder().Track("Foo").Build()
	assert.ErrorIs(t, err, ErrZeroInterval)

	_, err = NewTableBuilder().Track("").Every(time.Second).Build()
	assert.Error(t, err)

	assert.Panics(t, func() { NewTableBuilder().Track("Foo").MustBuild() })
}
