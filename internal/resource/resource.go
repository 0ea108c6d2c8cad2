// Package resource provides the resource definition registry and the
// market price table the trade system consults.
package resource

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Definition describes one tradeable resource kind.
type Definition struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	BaseValue float64 `json:"base_value"` // Fallback price when no live price is set
}

// Registry holds the known resource definitions and their current market
// prices. Definitions are registered once at startup and never mutated.
type Registry struct {
	order  []Definition
	index  map[string]int
	prices map[string]float64

	noise     opensimplex.Noise
	driftBand float64 // Max relative deviation from base value, e.g. 0.3 = ±30%
}

// NewRegistry creates a registry seeded for deterministic price drift.
// driftBand bounds how far drift may move a price from its base value;
// zero disables drift entirely.
func NewRegistry(seed int64, driftBand float64, defs []Definition) *Registry {
	r := &Registry{
		index:     make(map[string]int, len(defs)),
		prices:    make(map[string]float64, len(defs)),
		noise:     opensimplex.NewNormalized(seed),
		driftBand: driftBand,
	}
	for _, d := range defs {
		if _, dup := r.index[d.ID]; dup {
			continue
		}
		r.index[d.ID] = len(r.order)
		r.order = append(r.order, d)
	}
	return r
}

// Definitions returns the registered definitions in registration order.
func (r *Registry) Definitions() []Definition {
	return r.order
}

// Lookup resolves a resource definition by identifier.
func (r *Registry) Lookup(id string) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}
	return r.order[i], true
}

// Price returns the current market price for a resource, falling back
// to the definition's base value when no live price is set. Unknown
// resources price at zero.
func (r *Registry) Price(id string) float64 {
	if p, ok := r.prices[id]; ok {
		return p
	}
	i, ok := r.index[id]
	if !ok {
		return 0
	}
	return r.order[i].BaseValue
}

// SetPrice sets the live market price for a resource. Non-positive
// prices clear the live price, restoring the base-value fallback.
func (r *Registry) SetPrice(id string, price float64) {
	if price <= 0 {
		delete(r.prices, id)
		return
	}
	r.prices[id] = price
}

// Drift moves every live price through bounded simplex noise over
// simulation time, so the evaluator sees a shifting market instead of a
// flat price table. Each resource samples its own noise lane.
func (r *Registry) Drift(simTime float64) {
	if r.driftBand <= 0 {
		return
	}
	const timeScale = 1.0 / 600.0 // Full noise feature roughly every 10 sim-minutes
	for i, d := range r.order {
		n := r.noise.Eval2(simTime*timeScale, float64(i)*17.31)
		// Normalized noise is in [0,1]; recenter to [-1,1] and scale.
		offset := (n*2 - 1) * r.driftBand
		price := d.BaseValue * (1 + offset)
		floor := d.BaseValue * (1 - r.driftBand)
		ceiling := d.BaseValue * (1 + r.driftBand)
		r.prices[d.ID] = math.Min(math.Max(price, floor), ceiling)
	}
}
