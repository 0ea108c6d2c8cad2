// Package metrics provides Prometheus instrumentation for the trade engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SettlementsTotal counts successfully settled trades.
	SettlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradewinds_settlements_total",
		Help: "Total number of trades settled",
	})

	// SettlementFailures counts failed settlement attempts by reason.
	SettlementFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradewinds_settlement_failures_total",
		Help: "Settlement attempts rejected before any mutation",
	}, []string{"reason"})

	// SettledVolume tracks cumulative settled quantity per resource.
	SettledVolume = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradewinds_settled_volume_total",
		Help: "Cumulative settled quantity in resource units",
	}, []string{"resource"})

	// OffersCreated counts offers posted by the evaluators and the admin API.
	OffersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradewinds_offers_created_total",
		Help: "Offers and requests posted into hub books",
	}, []string{"direction"})

	// ActiveOffers tracks the number of live offers across all hubs.
	ActiveOffers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tradewinds_active_offers",
		Help: "Number of currently active offers and requests",
	})

	// FactionFunds tracks the current balance per faction.
	FactionFunds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tradewinds_faction_funds",
		Help: "Current faction balance in ducats",
	}, []string{"faction"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
