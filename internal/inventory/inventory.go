// Package inventory provides the per-entity resource ledger.
// See design doc Section 3.1.
package inventory

// Inventory maps resource identifiers to on-hand quantities.
// An absent key means quantity zero; no entry is ever negative.
// Fractional quantities are allowed.
type Inventory struct {
	Items map[string]float64 `json:"items"`
}

// New creates an empty inventory.
func New() *Inventory {
	return &Inventory{Items: make(map[string]float64)}
}

// Quantity returns the on-hand amount for a resource (zero when absent).
func (inv *Inventory) Quantity(resourceID string) float64 {
	return inv.Items[resourceID]
}

// Has reports whether at least amount units of a resource are on hand.
// Non-positive amounts are always satisfiable.
func (inv *Inventory) Has(resourceID string, amount float64) bool {
	if amount <= 0 {
		return true
	}
	return inv.Items[resourceID] >= amount
}

// Add credits amount units of a resource. Non-positive amounts are
// rejected with no mutation. No capacity ceiling is enforced.
func (inv *Inventory) Add(resourceID string, amount float64) bool {
	if amount <= 0 {
		return false
	}
	inv.Items[resourceID] += amount
	return true
}

// Remove debits amount units of a resource. Fails with no mutation when
// the amount is non-positive or stock is insufficient, so a quantity can
// never go negative. An entry that reaches zero is dropped from the map.
func (inv *Inventory) Remove(resourceID string, amount float64) bool {
	if amount <= 0 || !inv.Has(resourceID, amount) {
		return false
	}
	remaining := inv.Items[resourceID] - amount
	if remaining <= 0 {
		delete(inv.Items, resourceID)
	} else {
		inv.Items[resourceID] = remaining
	}
	return true
}
