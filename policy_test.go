package spawnhooks_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/comalice/spawnhooks"
)

func TestLookupCaseless(t *testing.T) {
	table := NewTable(
		Policy{Name: "BradleyAPC", PollInterval: 15 * time.Second},
		Policy{Name: "CargoShip", PollInterval: time.Minute},
	)

	p := table.Lookup("bradleyapc", "assets/prefabs/npc/m2bradley/bradleyapc.prefab")
	require.NotNil(t, p)
	assert.Equal(t, "BradleyAPC", p.Name)

	p = table.Lookup("CARGOSHIP", "")
	require.NotNil(t, p)
	assert.Equal(t, "CargoShip", p.Name)

	assert.Nil(t, table.Lookup("CargoPlane", "cargoship"))
}

func TestLookupPrefab(t *testing.T) {
	const path = "assets/prefabs/deployable/chinooklockedcrate/codelockedhackablecrate.prefab"
	table := NewTable(Policy{Name: path, PollInterval: 10 * time.Second})

	p := table.Lookup("HackableLockedCrate", "Assets/Prefabs/Deployable/ChinookLockedCrate/CodeLockedHackableCrate.prefab")
	require.NotNil(t, p)
	assert.True(t, p.IsPrefab())

	assert.Nil(t, table.Lookup("HackableLockedCrate", "assets/other.prefab"))
}

func TestLookupNonPrefabNameIgnoresPath(t *testing.T) {
	table := NewTable(Policy{Name: "crate", PollInterval: time.Second})
	assert.Nil(t, table.Lookup("HackableLockedCrate", "crate"))
}

func TestLookupFirstMatchInOrder(t *testing.T) {
	tests := []struct {
		name     string
		policies []Policy
		want     string
	}{
		{
			name: "type name first",
			policies: []Policy{
				{Name: "Foo", PollInterval: time.Second},
				{Name: "Foo.prefab", PollInterval: time.Second},
			},
			want: "Foo",
		},
		{
			name: "prefab first",
			policies: []Policy{
				{Name: "Foo.prefab", PollInterval: time.Second},
				{Name: "Foo", PollInterval: time.Second},
			},
			want: "Foo.prefab",
		},
		{
			name: "duplicate names keep the first",
			policies: []Policy{
				{Name: "Foo", PollInterval: time.Second, AddedHook: "OnFirst"},
				{Name: "foo", PollInterval: time.Second, AddedHook: "OnSecond"},
			},
			want: "Foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewTable(tt.policies...).Lookup("Foo", "Foo.prefab")
			require.NotNil(t, p)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestLookupEmptyTable(t *testing.T) {
	var nilTable *Table
	assert.Nil(t, nilTable.Lookup("Foo", ""))
	assert.Nil(t, NewTable().Lookup("Foo", ""))
	assert.Nil(t, NewTable(Policy{Name: ""}).Lookup("", ""))
	assert.Equal(t, 0, NewTable(Policy{Name: ""}).Len())
}

func TestHookNames(t *testing.T) {
	p := NewTable(Policy{Name: "BradleyAPC", PollInterval: time.Second, AddedHook: "OnTankSpawned", RemovedHook: "OnTankRemoved"}).Policies()[0]

	assert.Equal(t, "OnTankSpawned", p.HookName(HookAdded))
	assert.Equal(t, "OnTankRemoved", p.HookName(HookRemoved))
	assert.Equal(t, DefaultGroupExhaustedHook, p.HookName(HookGroupExhausted))

	assert.Equal(t, "OnTankRemoved", HookCall{Kind: HookRemoved, Policy: p}.Name())
	assert.Equal(t, DefaultAddedHook, HookCall{Kind: HookAdded}.Name())
}
