// Package trade provides offer bookkeeping, the opportunity evaluator,
// and the settlement engine that moves resources and funds between hubs.
// See design doc Section 3.3–3.5.
package trade

import (
	"github.com/talgya/tradewinds/internal/faction"
	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/resource"
)

// Context is the simulation-side view the trade system needs. It is
// passed explicitly into every call instead of living as ambient global
// state, so the trade core stays testable in isolation.
type Context interface {
	// Inventory resolves an entity's resource ledger. Nil when the
	// entity is unknown or lacks storage capability.
	Inventory(entityID string) *inventory.Inventory

	// Faction resolves the balance record of an entity's faction,
	// lazily initializing it on first access. Nil when the entity is
	// unknown or belongs to no faction.
	Faction(entityID string) *faction.Faction

	// ActiveRecipeInputs returns the input quantities of the entity's
	// currently assigned production recipe. Nil when the entity has no
	// production capability or no recipe assigned.
	ActiveRecipeInputs(entityID string) map[string]float64

	// Definitions returns every known resource definition.
	Definitions() []resource.Definition

	// Price returns the current market price for a resource, falling
	// back to the definition's base value when no live price is set.
	Price(resourceID string) float64

	// SimTime returns the current simulation time in sim-seconds.
	SimTime() float64
}

// Params holds the trade tunables. All defaults mirror the canonical
// source values.
type Params struct {
	SurplusThreshold   float64 // On-hand above this is exportable
	NecessityThreshold float64 // On-hand below this triggers import requests
	EvalInterval       float64 // Sim-seconds between evaluator passes
	ExportMarkup       float64 // Ask = market price × markup
	ImportMarkup       float64 // Ceiling = market price × markup
	HistoryCapacity    int     // Bounded transaction log size
}

// DefaultParams returns the canonical trade tunables.
func DefaultParams() Params {
	return Params{
		SurplusThreshold:   50,
		NecessityThreshold: 10,
		EvalInterval:       60,
		ExportMarkup:       1.10,
		ImportMarkup:       1.20,
		HistoryCapacity:    20,
	}
}
