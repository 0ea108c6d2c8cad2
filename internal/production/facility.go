// Package production provides the recipe-consuming facility component.
// Facilities turn input resources into output resources over a duration
// and feed the supply/demand signals the trade system reacts to.
package production

import (
	"log/slog"

	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/recipe"
)

// Context is the simulation-side view the production system needs.
type Context interface {
	// Inventory resolves an entity's resource ledger. Nil when the
	// entity is unknown or lacks storage capability.
	Inventory(entityID string) *inventory.Inventory

	// Recipe resolves a recipe by identifier.
	Recipe(id string) (recipe.Recipe, bool)
}

// Facility is the production capability of an entity. A cycle consumes
// all recipe inputs up front, runs for the recipe duration, then credits
// the outputs. When inputs are short the facility waits with zero
// progress and retries on a later tick.
type Facility struct {
	OwnerID  string  `json:"owner_id"`
	RecipeID string  `json:"recipe_id"`
	Progress float64 `json:"progress"` // Sim-seconds into the running cycle
	Running  bool    `json:"running"`  // Inputs consumed, cycle in flight
	Active   bool    `json:"active"`
}

// NewFacility creates an active facility assigned to a recipe.
func NewFacility(ownerID, recipeID string) *Facility {
	return &Facility{OwnerID: ownerID, RecipeID: recipeID, Active: true}
}

// Update advances production by deltaTime × speed. A facility whose
// recipe does not resolve clears the assignment and deactivates; one
// whose owner lacks storage deactivates. Both are recoverable operator
// conditions, warned once rather than crashed on.
func (f *Facility) Update(ctx Context, delta, speed float64) {
	if !f.Active || f.RecipeID == "" {
		return
	}

	rec, ok := ctx.Recipe(f.RecipeID)
	if !ok {
		slog.Warn("facility assigned unknown recipe, deactivating",
			"entity", f.OwnerID, "recipe", f.RecipeID)
		f.RecipeID = ""
		f.Active = false
		return
	}

	inv := ctx.Inventory(f.OwnerID)
	if inv == nil {
		slog.Warn("facility owner has no storage, deactivating", "entity", f.OwnerID)
		f.Active = false
		return
	}

	if !f.Running {
		if !f.startCycle(rec, inv) {
			return // Inputs short — wait, progress stays 0.
		}
	}

	f.Progress += delta * speed
	if f.Progress < rec.Duration {
		return
	}

	for id, qty := range rec.Outputs {
		inv.Add(id, qty)
	}
	f.Progress = 0
	f.Running = false
}

// startCycle consumes all recipe inputs atomically: either every input
// is available and all are debited, or nothing is touched.
func (f *Facility) startCycle(rec recipe.Recipe, inv *inventory.Inventory) bool {
	for id, qty := range rec.Inputs {
		if !inv.Has(id, qty) {
			return false
		}
	}
	for id, qty := range rec.Inputs {
		inv.Remove(id, qty)
	}
	f.Running = true
	f.Progress = 0
	return true
}
