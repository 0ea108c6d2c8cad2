// Package faction provides the faction registry and the shared monetary
// balances the settlement engine debits and credits.
// See design doc Section 3.2.
package faction

import "sort"

// Faction is the monetary/ownership group an entity belongs to. Every
// entity under the faction shares the one balance.
type Faction struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"` // Ducats
}

// Credit adds funds to the faction balance. Non-positive amounts are ignored.
func (f *Faction) Credit(amount float64) {
	if amount <= 0 {
		return
	}
	f.Balance += amount
}

// Debit withdraws funds. Refuses to overdraw: returns false with no
// mutation when the balance cannot cover the amount.
func (f *Faction) Debit(amount float64) bool {
	if amount <= 0 || f.Balance < amount {
		return false
	}
	f.Balance -= amount
	return true
}

// Registry resolves factions by identifier, lazily creating a balance
// record with the configured starting balance on first access.
type Registry struct {
	factions        map[string]*Faction
	startingBalance float64
}

// NewRegistry creates a faction registry. New factions start with
// startingBalance ducats.
func NewRegistry(startingBalance float64) *Registry {
	return &Registry{
		factions:        make(map[string]*Faction),
		startingBalance: startingBalance,
	}
}

// Get resolves a faction, creating it with the default starting balance
// if it has never been seen. Balances are initialized on first access,
// not at faction-creation time.
func (r *Registry) Get(id string) *Faction {
	if f, ok := r.factions[id]; ok {
		return f
	}
	f := &Faction{ID: id, Name: id, Balance: r.startingBalance}
	r.factions[id] = f
	return f
}

// Put installs a faction record, replacing any lazily created one.
// Used when seeding named factions and when restoring a snapshot.
func (r *Registry) Put(f *Faction) {
	r.factions[f.ID] = f
}

// All returns every known faction, ordered by identifier.
func (r *Registry) All() []*Faction {
	out := make([]*Faction, 0, len(r.factions))
	for _, f := range r.factions {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TotalFunds sums every faction balance. Used for conservation checks
// and the periodic report.
func (r *Registry) TotalFunds() float64 {
	total := 0.0
	for _, f := range r.factions {
		total += f.Balance
	}
	return total
}
