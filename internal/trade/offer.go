package trade

// Offer is a standing willingness to sell (export) or buy (import) a
// quantity of one resource at a price. An offer's amount is strictly
// positive while it sits in a book; the settlement engine decrements it
// and removes it once it is fully filled.
type Offer struct {
	ResourceID   string  `json:"resource_id"`
	Amount       float64 `json:"amount"`
	PricePerUnit float64 `json:"price_per_unit"`
	IsExport     bool    `json:"is_export"`
}

// Total returns the offer's full notional value.
func (o *Offer) Total() float64 {
	return o.Amount * o.PricePerUnit
}

// Book holds a hub's active offers: at most one export offer and one
// import request per resource. Price and direction are immutable while
// an offer is active; changing either means remove and recreate.
type Book struct {
	Exports map[string]*Offer `json:"exports"`
	Imports map[string]*Offer `json:"imports"`
}

// NewBook creates an empty offer book.
func NewBook() *Book {
	return &Book{
		Exports: make(map[string]*Offer),
		Imports: make(map[string]*Offer),
	}
}

// Export returns the active export offer for a resource, or nil.
func (b *Book) Export(resourceID string) *Offer {
	return b.Exports[resourceID]
}

// Import returns the active import request for a resource, or nil.
func (b *Book) Import(resourceID string) *Offer {
	return b.Imports[resourceID]
}

// Put installs an offer. Refused when the amount is non-positive or an
// offer for that resource and direction is already outstanding.
func (b *Book) Put(o *Offer) bool {
	if o == nil || o.Amount <= 0 {
		return false
	}
	side := b.side(o.IsExport)
	if _, exists := side[o.ResourceID]; exists {
		return false
	}
	side[o.ResourceID] = o
	return true
}

// Reduce decrements an offer's amount after a settlement. An offer whose
// amount falls to zero or below is removed from the book.
func (b *Book) Reduce(o *Offer, quantity float64) {
	o.Amount -= quantity
	if o.Amount <= 0 {
		delete(b.side(o.IsExport), o.ResourceID)
	}
}

// Remove drops an offer from the book regardless of remaining amount.
func (b *Book) Remove(o *Offer) {
	side := b.side(o.IsExport)
	if side[o.ResourceID] == o {
		delete(side, o.ResourceID)
	}
}

// Len returns the number of active offers across both directions.
func (b *Book) Len() int {
	return len(b.Exports) + len(b.Imports)
}

func (b *Book) side(isExport bool) map[string]*Offer {
	if isExport {
		return b.Exports
	}
	return b.Imports
}
