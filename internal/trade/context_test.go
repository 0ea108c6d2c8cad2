package trade

import (
	"github.com/talgya/tradewinds/internal/faction"
	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/resource"
)

// stubContext is a hand-rolled trade.Context for exercising the trade
// core without the full simulation.
type stubContext struct {
	invs     map[string]*inventory.Inventory
	factions map[string]*faction.Faction
	owners   map[string]string              // entity id → faction id
	recipes  map[string]map[string]float64 // entity id → active recipe inputs
	defs     []resource.Definition
	prices   map[string]float64
	simTime  float64
}

func newStubContext() *stubContext {
	return &stubContext{
		invs:     make(map[string]*inventory.Inventory),
		factions: make(map[string]*faction.Faction),
		owners:   make(map[string]string),
		recipes:  make(map[string]map[string]float64),
		prices:   make(map[string]float64),
	}
}

// addEntity registers an entity with an empty inventory and a faction
// holding the given balance, and returns its inventory for stocking.
func (c *stubContext) addEntity(id, factionID string, balance float64) *inventory.Inventory {
	inv := inventory.New()
	c.invs[id] = inv
	if _, ok := c.factions[factionID]; !ok {
		c.factions[factionID] = &faction.Faction{ID: factionID, Balance: balance}
	}
	c.owners[id] = factionID
	return inv
}

func (c *stubContext) addResource(id string, base, price float64) {
	c.defs = append(c.defs, resource.Definition{ID: id, Name: id, BaseValue: base})
	if price > 0 {
		c.prices[id] = price
	}
}

func (c *stubContext) Inventory(entityID string) *inventory.Inventory {
	return c.invs[entityID]
}

func (c *stubContext) Faction(entityID string) *faction.Faction {
	fid, ok := c.owners[entityID]
	if !ok {
		return nil
	}
	return c.factions[fid]
}

func (c *stubContext) ActiveRecipeInputs(entityID string) map[string]float64 {
	return c.recipes[entityID]
}

func (c *stubContext) Definitions() []resource.Definition {
	return c.defs
}

func (c *stubContext) Price(resourceID string) float64 {
	if p, ok := c.prices[resourceID]; ok {
		return p
	}
	for _, d := range c.defs {
		if d.ID == resourceID {
			return d.BaseValue
		}
	}
	return 0
}

func (c *stubContext) SimTime() float64 {
	return c.simTime
}
