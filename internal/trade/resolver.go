package trade

import "sort"

// Resolve runs one matching pass over the given hubs: for every live
// export offer it looks for a price-compatible import request on another
// hub, in the caller's hub order, and settles each match bilaterally.
// Hub order is the tie-break: the first compatible counterparty wins.
//
// Settlement calls for a tick are serialized through this single
// resolver; the settlement engine itself assumes no concurrent access
// to a hub pair. Returns the settled trades for event reporting.
func Resolve(ctx Context, hubs []*Hub) []Result {
	var results []Result

	for _, poster := range hubs {
		if !poster.Active {
			continue
		}

		// Deterministic resource order within one hub.
		resources := make([]string, 0, len(poster.Book.Exports))
		for id := range poster.Book.Exports {
			resources = append(resources, id)
		}
		sort.Strings(resources)

		for _, resourceID := range resources {
			offer := poster.Book.Export(resourceID)
			if offer == nil {
				continue
			}
			for _, accepter := range hubs {
				if accepter == poster || !accepter.Active {
					continue
				}
				request := accepter.Book.Import(resourceID)
				if request == nil || request.PricePerUnit < offer.PricePerUnit {
					continue
				}
				if res, ok := settle(ctx, accepter, poster, offer); ok {
					results = append(results, res)
				}
				// A partial fill leaves the offer live for the next
				// counterparty; a full fill removes it from the book.
				if poster.Book.Export(resourceID) != offer {
					break
				}
			}
		}
	}

	return results
}

// ActiveOffers counts live offers and requests across the given hubs.
func ActiveOffers(hubs []*Hub) int {
	total := 0
	for _, h := range hubs {
		total += h.Book.Len()
	}
	return total
}
