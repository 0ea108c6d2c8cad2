package trade

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/tradewinds/internal/metrics"
)

// Settlement failure reasons, used as metric labels. All failures are
// expected negotiation outcomes, not faults: the call returns false and
// no record is mutated.
const (
	FailOfferGone         = "offer_gone"
	FailNoCounterpart     = "no_counterpart"
	FailPriceIncompatible = "price_incompatible"
	FailInsufficientStock = "insufficient_stock"
	FailInsufficientFunds = "insufficient_funds"
	FailMissingCapability = "missing_capability"
)

// Result describes one settled trade, for event reporting.
type Result struct {
	TxID       string  `json:"tx_id"`
	ImporterID string  `json:"importer_id"`
	ExporterID string  `json:"exporter_id"`
	ResourceID string  `json:"resource_id"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Total      float64 `json:"total"`
}

// Settle executes one bilateral trade: accepter takes poster's offer.
// The direction follows the offer: for an export offer the accepter is
// the importer; for an import request the accepter is the exporter.
//
// Every precondition is validated before any mutation, and the four
// effects (exporter inventory debit, importer inventory credit, importer
// balance debit, exporter balance credit) apply with no suspension point
// in between, so every exit path leaves both ledgers and both balances
// mutually consistent. Returns false when the trade cannot settle.
func Settle(ctx Context, accepter, poster *Hub, offer *Offer) bool {
	_, ok := settle(ctx, accepter, poster, offer)
	return ok
}

func settle(ctx Context, accepter, poster *Hub, offer *Offer) (Result, bool) {
	if offer == nil || accepter == nil || poster == nil {
		return Result{}, failure(FailOfferGone)
	}

	var importer, exporter *Hub
	var posted, counter *Offer
	if offer.IsExport {
		importer, exporter = accepter, poster
		posted = poster.Book.Export(offer.ResourceID)
		counter = accepter.Book.Import(offer.ResourceID)
	} else {
		importer, exporter = poster, accepter
		posted = poster.Book.Import(offer.ResourceID)
		counter = accepter.Book.Export(offer.ResourceID)
	}

	// The referenced offer must still be live in the poster's book.
	if posted != offer {
		return Result{}, failure(FailOfferGone)
	}
	if counter == nil {
		return Result{}, failure(FailNoCounterpart)
	}

	// The importer never pays above its stated ceiling. The accepting
	// side's bound only gates eligibility: the agreed price is always
	// the posted offer's price, never a midpoint.
	var ask, ceiling float64
	if offer.IsExport {
		ask, ceiling = offer.PricePerUnit, counter.PricePerUnit
	} else {
		ask, ceiling = counter.PricePerUnit, offer.PricePerUnit
	}
	if ask > ceiling {
		return Result{}, failure(FailPriceIncompatible)
	}

	quantity := offer.Amount
	if counter.Amount < quantity {
		quantity = counter.Amount
	}
	price := offer.PricePerUnit
	total := quantity * price

	exporterInv := ctx.Inventory(exporter.OwnerID)
	importerInv := ctx.Inventory(importer.OwnerID)
	if exporterInv == nil || importerInv == nil {
		return Result{}, failure(FailMissingCapability)
	}
	importerFaction := ctx.Faction(importer.OwnerID)
	exporterFaction := ctx.Faction(exporter.OwnerID)
	if importerFaction == nil || exporterFaction == nil {
		return Result{}, failure(FailMissingCapability)
	}

	if !exporterInv.Has(offer.ResourceID, quantity) {
		return Result{}, failure(FailInsufficientStock)
	}
	// Funds check happens before any inventory mutation.
	if importerFaction.Balance < total {
		return Result{}, failure(FailInsufficientFunds)
	}

	// Debit before credit: a failed debit leaves both ledgers untouched.
	if !exporterInv.Remove(offer.ResourceID, quantity) {
		return Result{}, failure(FailInsufficientStock)
	}
	importerInv.Add(offer.ResourceID, quantity)
	importerFaction.Debit(total) // Cannot fail: balance checked above
	exporterFaction.Credit(total)

	poster.Book.Reduce(posted, quantity)
	accepter.Book.Reduce(counter, quantity)

	txID := uuid.NewString()[:8]
	now := ctx.SimTime()
	importer.History.Record(Entry{
		TxID:    txID,
		SimTime: now,
		Message: fmt.Sprintf("Imported %g %s for %g ducats from %s", quantity, offer.ResourceID, total, exporter.OwnerID),
	})
	exporter.History.Record(Entry{
		TxID:    txID,
		SimTime: now,
		Message: fmt.Sprintf("Exported %g %s for %g ducats to %s", quantity, offer.ResourceID, total, importer.OwnerID),
	})

	metrics.SettlementsTotal.Inc()
	metrics.SettledVolume.WithLabelValues(offer.ResourceID).Add(quantity)

	return Result{
		TxID:       txID,
		ImporterID: importer.OwnerID,
		ExporterID: exporter.OwnerID,
		ResourceID: offer.ResourceID,
		Quantity:   quantity,
		Price:      price,
		Total:      total,
	}, true
}

func failure(reason string) bool {
	metrics.SettlementFailures.WithLabelValues(reason).Inc()
	return false
}
