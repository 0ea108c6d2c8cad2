package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/entity"
	"github.com/talgya/tradewinds/internal/faction"
	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/production"
	"github.com/talgya/tradewinds/internal/trade"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEntityRoundTrip(t *testing.T) {
	db := openTestDB(t)
	params := trade.DefaultParams()

	inv := inventory.New()
	inv.Add("wood", 42.5)
	hub := trade.NewHub("e1", params)
	hub.Subsistence = "grain"
	hub.Accumulated = 33
	require.True(t, hub.PostImport("grain", 20, 2.4))
	hub.History.Record(trade.Entry{TxID: "abcd1234", SimTime: 10, Message: "Imported 5 grain for 12 ducats from e2"})

	in := []*entity.Entity{
		{
			ID: "e1", Name: "Millbrook", Kind: entity.KindSettlement, FactionID: "free-ports",
			Inventory: inv,
			Hub:       hub,
		},
		{
			ID: "e2", Name: "Pinefall Mill", Kind: entity.KindFacility, FactionID: "northern-league",
			Inventory:  inventory.New(),
			Production: &production.Facility{OwnerID: "e2", RecipeID: "sawmill", Progress: 12, Running: true, Active: true},
		},
		// Storage-only waypoint: every capability column NULL except inventory.
		{ID: "e3", Name: "Crossroads", Kind: entity.KindDepot, FactionID: "free-ports", Inventory: inventory.New()},
	}
	require.NoError(t, db.SaveEntities(in))

	out, err := db.LoadEntities(params)
	require.NoError(t, err)
	require.Len(t, out, 3)

	byID := map[string]*entity.Entity{}
	for _, e := range out {
		byID[e.ID] = e
	}

	town := byID["e1"]
	require.NotNil(t, town)
	assert.Equal(t, "Millbrook", town.Name)
	assert.Equal(t, entity.KindSettlement, town.Kind)
	assert.Equal(t, 42.5, town.Inventory.Quantity("wood"))
	require.NotNil(t, town.Hub)
	assert.Equal(t, "grain", town.Hub.Subsistence)
	assert.Equal(t, 33.0, town.Hub.Accumulated)
	req := town.Hub.Book.Import("grain")
	require.NotNil(t, req)
	assert.Equal(t, 20.0, req.Amount)
	require.Equal(t, 1, town.Hub.History.Len())
	assert.Equal(t, "abcd1234", town.Hub.History.Entries[0].TxID)
	assert.Nil(t, town.Production)

	mill := byID["e2"]
	require.NotNil(t, mill)
	require.NotNil(t, mill.Production)
	assert.Equal(t, "sawmill", mill.Production.RecipeID)
	assert.Equal(t, 12.0, mill.Production.Progress)
	assert.True(t, mill.Production.Running)
	assert.Nil(t, mill.Hub)

	depot := byID["e3"]
	require.NotNil(t, depot)
	assert.Nil(t, depot.Production)
	assert.Nil(t, depot.Hub)
}

func TestSaveEntitiesIsFullReplace(t *testing.T) {
	db := openTestDB(t)
	params := trade.DefaultParams()

	require.NoError(t, db.SaveEntities([]*entity.Entity{{ID: "old", Name: "Old", FactionID: "f"}}))
	require.NoError(t, db.SaveEntities([]*entity.Entity{{ID: "new", Name: "New", FactionID: "f"}}))

	out, err := db.LoadEntities(params)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].ID)
}

func TestFactionRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveFactions([]*faction.Faction{
		{ID: "northern-league", Name: "Northern League", Balance: 10044},
		{ID: "free-ports", Name: "Free Ports", Balance: 9956},
	}))

	out, err := db.LoadFactions()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "free-ports", out[0].ID, "loaded in id order")
	assert.Equal(t, 9956.0, out[0].Balance)
	assert.Equal(t, 10044.0, out[1].Balance)
}

func TestEventsAppendAndRecent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveEvents([]engine.Event{
		{SimTime: 1, Description: "first", Category: "system"},
		{SimTime: 2, Description: "second", Category: "trade"},
		{SimTime: 3, Description: "third", Category: "offer"},
	}))
	require.NoError(t, db.SaveEvents(nil), "empty batch is a no-op")

	recent, err := db.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Description, "newest first")
	assert.Equal(t, "second", recent[1].Description)
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMeta("sim_time", "86400.5"))
	require.NoError(t, db.SaveMeta("sim_time", "90000"))

	v, err := db.GetMeta("sim_time")
	require.NoError(t, err)
	assert.Equal(t, "90000", v, "replace, not append")

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}

func TestHasWorldState(t *testing.T) {
	db := openTestDB(t)
	assert.False(t, db.HasWorldState())

	require.NoError(t, db.SaveEntities([]*entity.Entity{{ID: "e1", Name: "x", FactionID: "f"}}))
	assert.True(t, db.HasWorldState())
}
