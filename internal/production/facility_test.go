package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/recipe"
)

type stubContext struct {
	invs    map[string]*inventory.Inventory
	recipes *recipe.Registry
}

func newStubContext(t *testing.T) *stubContext {
	t.Helper()
	reg := recipe.NewRegistry()
	require.NoError(t, reg.Register(recipe.Recipe{
		ID:       "sawmill",
		Inputs:   map[string]float64{"wood": 3},
		Outputs:  map[string]float64{"planks": 2},
		Duration: 45,
	}))
	return &stubContext{invs: make(map[string]*inventory.Inventory), recipes: reg}
}

func (c *stubContext) Inventory(entityID string) *inventory.Inventory { return c.invs[entityID] }

func (c *stubContext) Recipe(id string) (recipe.Recipe, bool) { return c.recipes.Get(id) }

func TestFacilityRunsFullCycle(t *testing.T) {
	ctx := newStubContext(t)
	inv := inventory.New()
	inv.Add("wood", 10)
	ctx.invs["mill"] = inv

	f := NewFacility("mill", "sawmill")

	// First tick consumes inputs and starts the cycle.
	f.Update(ctx, 1, 1)
	assert.True(t, f.Running)
	assert.Equal(t, 7.0, inv.Quantity("wood"), "all inputs consumed up front")
	assert.Equal(t, 0.0, inv.Quantity("planks"))

	// Ride out the remaining duration.
	f.Update(ctx, 44, 1)
	assert.Equal(t, 2.0, inv.Quantity("planks"))
	assert.False(t, f.Running)
	assert.Zero(t, f.Progress)
}

func TestFacilityWaitsWhenInputsShort(t *testing.T) {
	ctx := newStubContext(t)
	inv := inventory.New()
	inv.Add("wood", 2) // Recipe needs 3
	ctx.invs["mill"] = inv

	f := NewFacility("mill", "sawmill")
	f.Update(ctx, 100, 1)

	assert.False(t, f.Running)
	assert.Zero(t, f.Progress, "waiting accrues no progress")
	assert.Equal(t, 2.0, inv.Quantity("wood"), "nothing consumed while waiting")

	// Inputs arrive; the next tick starts the cycle.
	inv.Add("wood", 5)
	f.Update(ctx, 1, 1)
	assert.True(t, f.Running)
	assert.Equal(t, 4.0, inv.Quantity("wood"))
}

func TestFacilityHonorsSpeedMultiplier(t *testing.T) {
	ctx := newStubContext(t)
	inv := inventory.New()
	inv.Add("wood", 3)
	ctx.invs["mill"] = inv

	f := NewFacility("mill", "sawmill")
	f.Update(ctx, 15, 3) // 45 sim-seconds in one tick

	assert.Equal(t, 2.0, inv.Quantity("planks"))
	assert.False(t, f.Running)
}

func TestFacilityBacksToBackCycles(t *testing.T) {
	ctx := newStubContext(t)
	inv := inventory.New()
	inv.Add("wood", 6)
	ctx.invs["mill"] = inv

	f := NewFacility("mill", "sawmill")
	f.Update(ctx, 45, 1)
	f.Update(ctx, 45, 1)

	assert.Equal(t, 4.0, inv.Quantity("planks"))
	assert.False(t, inv.Has("wood", 1), "both batches of inputs consumed")
}

func TestFacilityUnknownRecipeDeactivates(t *testing.T) {
	ctx := newStubContext(t)
	ctx.invs["mill"] = inventory.New()

	f := NewFacility("mill", "does-not-exist")
	f.Update(ctx, 1, 1)

	assert.False(t, f.Active)
	assert.Empty(t, f.RecipeID, "bad assignment cleared")
}

func TestFacilityWithoutStorageDeactivates(t *testing.T) {
	ctx := newStubContext(t)

	f := NewFacility("ghost", "sawmill")
	f.Update(ctx, 1, 1)

	assert.False(t, f.Active)
	assert.Equal(t, "sawmill", f.RecipeID, "assignment kept for when storage appears")
}

func TestFacilityInactiveIsInert(t *testing.T) {
	ctx := newStubContext(t)
	inv := inventory.New()
	inv.Add("wood", 10)
	ctx.invs["mill"] = inv

	f := NewFacility("mill", "sawmill")
	f.Active = false
	f.Update(ctx, 100, 1)

	assert.Equal(t, 10.0, inv.Quantity("wood"))
	assert.False(t, f.Running)
}
