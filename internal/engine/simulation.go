// Simulation ties together the economy registries and runs the trade
// and production systems each tick.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/tradewinds/internal/entity"
	"github.com/talgya/tradewinds/internal/faction"
	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/metrics"
	"github.com/talgya/tradewinds/internal/recipe"
	"github.com/talgya/tradewinds/internal/resource"
	"github.com/talgya/tradewinds/internal/trade"
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Simulation holds the complete economy state and wires systems
// together. It is the simulation-context handle threaded through every
// trade and production call — there are no ambient globals.
//
// A single logical resolver drives all trades for a tick; settlement
// calls are serialized through the tick loop, so no fine-grained locks
// are needed.
type Simulation struct {
	Entities  *entity.Registry
	Resources *resource.Registry
	Recipes   *recipe.Registry
	Factions  *faction.Registry

	Events []Event // Recent events (bounded)
	Stats  SimStats

	simTime     float64
	settlements uint64 // Trades settled since start
}

// Event is a notable occurrence in the economy.
type Event struct {
	SimTime     float64 `json:"sim_time" db:"sim_time"`
	Description string  `json:"description" db:"description"`
	Category    string  `json:"category" db:"category"` // "trade", "offer", "system"
}

// SimStats tracks aggregate economy statistics.
type SimStats struct {
	Entities     int     `json:"entities"`
	ActiveOffers int     `json:"active_offers"`
	Settlements  uint64  `json:"settlements"`
	TotalFunds   float64 `json:"total_funds"`
	TotalStock   float64 `json:"total_stock"`
}

// NewSimulation creates a simulation from assembled registries.
func NewSimulation(entities *entity.Registry, resources *resource.Registry, recipes *recipe.Registry, factions *faction.Registry) *Simulation {
	s := &Simulation{
		Entities:  entities,
		Resources: resources,
		Recipes:   recipes,
		Factions:  factions,
	}
	s.updateStats()
	return s
}

// Tick advances the simulation by one step: prices drift, facilities
// produce, hub evaluators refresh their books, and the trade resolver
// settles matched offers.
func (s *Simulation) Tick(delta, speed float64) {
	s.simTime += delta * speed
	s.Resources.Drift(s.simTime)

	for _, e := range s.Entities.All() {
		if e.Production != nil {
			e.Production.Update(s, delta, speed)
		}
		if e.Hub != nil {
			for _, o := range e.Hub.Update(s, delta, speed) {
				s.recordOfferEvent(e, o)
			}
		}
	}

	for _, r := range trade.Resolve(s, s.Entities.Hubs()) {
		s.settlements++
		s.record("trade", fmt.Sprintf("%s imported %g %s from %s for %g ducats",
			r.ImporterID, r.Quantity, r.ResourceID, r.ExporterID, r.Total))
	}

	s.updateStats()
}

// SimTime returns the current simulation time in sim-seconds.
func (s *Simulation) SimTime() float64 {
	return s.simTime
}

// SetSimTime restores the simulation clock, used when loading a snapshot.
func (s *Simulation) SetSimTime(t float64) {
	s.simTime = t
}

// Report logs the periodic economy summary.
func (s *Simulation) Report(tick uint64) {
	slog.Info("economy report",
		"tick", tick,
		"time", FormatSimTime(s.simTime),
		"entities", s.Stats.Entities,
		"active_offers", s.Stats.ActiveOffers,
		"settlements", s.Stats.Settlements,
		"total_funds", humanize.Commaf(s.Stats.TotalFunds),
		"total_stock", humanize.Commaf(s.Stats.TotalStock),
	)
}

// ── trade.Context and production.Context ──────────────────────────────

// Inventory resolves an entity's resource ledger; nil when the entity
// is unknown or lacks storage capability.
func (s *Simulation) Inventory(entityID string) *inventory.Inventory {
	e, ok := s.Entities.Get(entityID)
	if !ok {
		return nil
	}
	return e.Inventory
}

// Faction resolves the balance record of an entity's faction, lazily
// creating it with the default starting balance on first access.
func (s *Simulation) Faction(entityID string) *faction.Faction {
	e, ok := s.Entities.Get(entityID)
	if !ok || e.FactionID == "" {
		return nil
	}
	return s.Factions.Get(e.FactionID)
}

// ActiveRecipeInputs returns the input quantities of the entity's
// assigned production recipe, or nil.
func (s *Simulation) ActiveRecipeInputs(entityID string) map[string]float64 {
	e, ok := s.Entities.Get(entityID)
	if !ok || e.Production == nil || e.Production.RecipeID == "" {
		return nil
	}
	rec, ok := s.Recipes.Get(e.Production.RecipeID)
	if !ok {
		return nil
	}
	return rec.Inputs
}

// Recipe resolves a recipe by identifier.
func (s *Simulation) Recipe(id string) (recipe.Recipe, bool) {
	return s.Recipes.Get(id)
}

// Definitions returns every known resource definition.
func (s *Simulation) Definitions() []resource.Definition {
	return s.Resources.Definitions()
}

// Price returns the current market price for a resource.
func (s *Simulation) Price(resourceID string) float64 {
	return s.Resources.Price(resourceID)
}

// ── internals ─────────────────────────────────────────────────────────

func (s *Simulation) recordOfferEvent(e *entity.Entity, o *trade.Offer) {
	if o.IsExport {
		s.record("offer", fmt.Sprintf("%s offers %g %s at %.2f", e.ID, o.Amount, o.ResourceID, o.PricePerUnit))
	} else {
		s.record("offer", fmt.Sprintf("%s requests %g %s at up to %.2f", e.ID, o.Amount, o.ResourceID, o.PricePerUnit))
	}
}

func (s *Simulation) record(category, description string) {
	s.Events = append(s.Events, Event{
		SimTime:     s.simTime,
		Description: description,
		Category:    category,
	})
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

func (s *Simulation) updateStats() {
	totalStock := 0.0
	for _, e := range s.Entities.All() {
		if e.Inventory == nil {
			continue
		}
		for _, qty := range e.Inventory.Items {
			totalStock += qty
		}
	}

	hubs := s.Entities.Hubs()
	s.Stats = SimStats{
		Entities:     s.Entities.Len(),
		ActiveOffers: trade.ActiveOffers(hubs),
		Settlements:  s.settlements,
		TotalFunds:   s.Factions.TotalFunds(),
		TotalStock:   totalStock,
	}

	metrics.ActiveOffers.Set(float64(s.Stats.ActiveOffers))
	for _, f := range s.Factions.All() {
		metrics.FactionFunds.WithLabelValues(f.ID).Set(f.Balance)
	}
}
