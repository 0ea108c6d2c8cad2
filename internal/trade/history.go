package trade

// Entry is one timestamped line in a hub's transaction history. Both
// sides of a settlement record their own perspective under a shared
// transaction id.
type Entry struct {
	TxID    string  `json:"tx_id"`
	SimTime float64 `json:"sim_time"`
	Message string  `json:"message"`
}

// History is a bounded, most-recent-first transaction log. Appending
// past capacity evicts the oldest entry.
type History struct {
	Entries []Entry `json:"entries"`

	capacity int
}

// NewHistory creates a history bounded at the given capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// Record prepends an entry, evicting the oldest past capacity.
func (h *History) Record(e Entry) {
	h.Entries = append([]Entry{e}, h.Entries...)
	if len(h.Entries) > h.capacity {
		h.Entries = h.Entries[:h.capacity]
	}
}

// SetCapacity rebounds the history, trimming the oldest entries if the
// new capacity is smaller. Used when restoring from a snapshot.
func (h *History) SetCapacity(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	h.capacity = capacity
	if len(h.Entries) > capacity {
		h.Entries = h.Entries[:capacity]
	}
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.Entries)
}
