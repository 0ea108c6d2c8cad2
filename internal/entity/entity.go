// Package entity provides the entity/capability container. Entities are
// composed of optional capability records (storage, production, trade)
// looked up explicitly, rather than an inheritance hierarchy; every
// dependent operation is a guarded read that fails gracefully when a
// capability is absent.
package entity

import (
	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/production"
	"github.com/talgya/tradewinds/internal/trade"
)

// Kind categorizes an entity for the trade system's necessity rules.
type Kind uint8

const (
	KindSettlement Kind = iota // Population center; always needs subsistence
	KindFacility               // Production site
	KindDepot                  // Storage-only waypoint
)

// String returns the kind's wire name.
func (k Kind) String() string {
	switch k {
	case KindSettlement:
		return "settlement"
	case KindFacility:
		return "facility"
	case KindDepot:
		return "depot"
	}
	return "unknown"
}

// Entity is a simulated holder of capabilities. Nil capability fields
// mean the entity lacks that capability.
type Entity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	FactionID string `json:"faction_id"`

	Inventory  *inventory.Inventory `json:"inventory,omitempty"`
	Production *production.Facility `json:"production,omitempty"`
	Hub        *trade.Hub           `json:"hub,omitempty"`
}

// Registry resolves entities by identifier, preserving registration
// order for deterministic iteration.
type Registry struct {
	order []*Entity
	index map[string]*Entity
}

// NewRegistry creates an empty entity registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*Entity)}
}

// Add registers an entity. A duplicate identifier replaces nothing and
// returns false.
func (r *Registry) Add(e *Entity) bool {
	if e == nil || e.ID == "" {
		return false
	}
	if _, dup := r.index[e.ID]; dup {
		return false
	}
	r.index[e.ID] = e
	r.order = append(r.order, e)
	return true
}

// Get resolves an entity by identifier.
func (r *Registry) Get(id string) (*Entity, bool) {
	e, ok := r.index[id]
	return e, ok
}

// All returns every entity in registration order.
func (r *Registry) All() []*Entity {
	return r.order
}

// Hubs returns the trade hubs of every hub-capable entity, in
// registration order. This ordering is the resolver's tie-break.
func (r *Registry) Hubs() []*trade.Hub {
	hubs := make([]*trade.Hub, 0, len(r.order))
	for _, e := range r.order {
		if e.Hub != nil {
			hubs = append(hubs, e.Hub)
		}
	}
	return hubs
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	return len(r.order)
}
