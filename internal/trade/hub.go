package trade

import (
	"log/slog"
	"math"

	"github.com/talgya/tradewinds/internal/metrics"
)

// Hub is the trade capability of an entity: it owns an offer book and a
// bounded transaction history, and periodically scans its entity's
// inventory against market prices for export and import opportunities.
type Hub struct {
	OwnerID string `json:"owner_id"`

	// Subsistence names the resource a settlement-kind owner always
	// needs. Empty for facilities and depots.
	Subsistence string `json:"subsistence,omitempty"`

	// TradeRange is the hub's declared trade reach. Matching does not
	// consult it. TODO: enforce TradeRange once entity positions land
	// in the registry.
	TradeRange float64 `json:"trade_range"`

	Active  bool     `json:"active"`
	Book    *Book    `json:"book"`
	History *History `json:"history"`

	// Accumulated sim-time toward the next evaluator pass. Reset to
	// zero on fire; the overshoot is dropped, not carried forward.
	Accumulated float64 `json:"accumulated"`

	params Params
}

// NewHub creates an active trade hub for the given entity.
func NewHub(ownerID string, p Params) *Hub {
	h := &Hub{OwnerID: ownerID, Active: true}
	h.ApplyParams(p)
	return h
}

// ApplyParams installs trade tunables and makes the hub structurally
// sound. Called by NewHub and again after a snapshot restore, since
// params are configuration, not persisted state.
func (h *Hub) ApplyParams(p Params) {
	h.params = p
	if h.Book == nil {
		h.Book = NewBook()
	}
	if h.History == nil {
		h.History = NewHistory(p.HistoryCapacity)
	} else {
		h.History.SetCapacity(p.HistoryCapacity)
	}
}

// Update advances the evaluator clock by deltaTime × speed and runs one
// evaluation pass when the configured interval has elapsed. Returns the
// offers created by the pass, if any.
func (h *Hub) Update(ctx Context, delta, speed float64) []*Offer {
	if !h.Active {
		return nil
	}
	h.Accumulated += delta * speed
	if h.Accumulated < h.params.EvalInterval {
		return nil
	}
	h.Accumulated = 0
	return h.evaluate(ctx)
}

// evaluate scans every known resource once. Per resource it posts at
// most one new export offer or import request; outstanding offers are
// never replaced, so the pass is idempotent per interval.
func (h *Hub) evaluate(ctx Context) []*Offer {
	inv := ctx.Inventory(h.OwnerID)
	if inv == nil {
		slog.Warn("trade hub owner has no storage, deactivating", "entity", h.OwnerID)
		h.Active = false
		return nil
	}

	var created []*Offer
	for _, def := range ctx.Definitions() {
		onHand := inv.Quantity(def.ID)
		price := ctx.Price(def.ID)

		if onHand > h.params.SurplusThreshold && h.Book.Export(def.ID) == nil {
			amount := math.Floor((onHand - h.params.SurplusThreshold) / 2)
			if o := h.postExport(ctx, def.ID, amount, price*h.params.ExportMarkup); o != nil {
				created = append(created, o)
			}
			continue
		}

		if onHand < h.params.NecessityThreshold && h.Book.Import(def.ID) == nil && h.needs(ctx, def.ID) {
			if o := h.postImport(def.ID, 2*h.params.NecessityThreshold, price*h.params.ImportMarkup); o != nil {
				created = append(created, o)
			}
		}
	}
	return created
}

// needs reports whether a resource is judged necessary for the owner:
// either an input of the owner's currently assigned production recipe,
// or the designated subsistence resource of a settlement-kind owner.
func (h *Hub) needs(ctx Context, resourceID string) bool {
	if h.Subsistence != "" && resourceID == h.Subsistence {
		return true
	}
	inputs := ctx.ActiveRecipeInputs(h.OwnerID)
	_, needed := inputs[resourceID]
	return needed
}

// PostExport creates an export offer: the hub will sell amount units at
// pricePerUnit. Refused when the amount is non-positive, the inventory
// cannot currently back it, or an export offer is already outstanding
// for the resource.
func (h *Hub) PostExport(ctx Context, resourceID string, amount, pricePerUnit float64) bool {
	return h.postExport(ctx, resourceID, amount, pricePerUnit) != nil
}

// PostImport creates an import request: the hub will buy up to amount
// units paying at most maxPrice per unit. Refused when the amount is
// non-positive or a request is already outstanding for the resource.
func (h *Hub) PostImport(resourceID string, amount, maxPrice float64) bool {
	return h.postImport(resourceID, amount, maxPrice) != nil
}

func (h *Hub) postExport(ctx Context, resourceID string, amount, pricePerUnit float64) *Offer {
	if amount <= 0 {
		return nil
	}
	inv := ctx.Inventory(h.OwnerID)
	if inv == nil || !inv.Has(resourceID, amount) {
		return nil
	}
	o := &Offer{ResourceID: resourceID, Amount: amount, PricePerUnit: pricePerUnit, IsExport: true}
	if !h.Book.Put(o) {
		return nil
	}
	metrics.OffersCreated.WithLabelValues("export").Inc()
	return o
}

func (h *Hub) postImport(resourceID string, amount, maxPrice float64) *Offer {
	o := &Offer{ResourceID: resourceID, Amount: amount, PricePerUnit: maxPrice, IsExport: false}
	if !h.Book.Put(o) {
		return nil
	}
	metrics.OffersCreated.WithLabelValues("import").Inc()
	return o
}
