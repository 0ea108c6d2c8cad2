// Package api provides the HTTP API for querying economy state.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/metrics"
	"github.com/talgya/tradewinds/internal/persistence"
	"github.com/talgya/tradewinds/internal/trade"
)

// Server serves the economy state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Admin endpoints mutate the running simulation; keep them on a
	// short leash even with a valid key.
	adminLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/entities", s.handleEntities)
	mux.HandleFunc("/api/v1/entity/", s.handleEntityRoutes(adminLimiter))
	mux.HandleFunc("/api/v1/offers", s.handleOffers)
	mux.HandleFunc("/api/v1/factions", s.handleFactions)
	mux.HandleFunc("/api/v1/resources", s.handleResources)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)

	// Prometheus metrics.
	mux.Handle("/metrics", metrics.Handler())

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":          "Tradewinds",
		"tick":          s.Eng.Tick,
		"sim_time":      s.Sim.SimTime(),
		"time":          engine.FormatSimTime(s.Sim.SimTime()),
		"speed":         s.Eng.Speed,
		"running":       s.Eng.Running,
		"entities":      s.Sim.Stats.Entities,
		"active_offers": s.Sim.Stats.ActiveOffers,
		"settlements":   s.Sim.Stats.Settlements,
		"total_funds":   s.Sim.Stats.TotalFunds,
		"total_stock":   s.Sim.Stats.TotalStock,
	})
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	type entitySummary struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Kind       string `json:"kind"`
		FactionID  string `json:"faction_id"`
		Storage    bool   `json:"storage"`
		Production bool   `json:"production"`
		TradeHub   bool   `json:"trade_hub"`
		Offers     int    `json:"offers"`
	}

	var result []entitySummary
	for _, e := range s.Sim.Entities.All() {
		summary := entitySummary{
			ID:         e.ID,
			Name:       e.Name,
			Kind:       e.Kind.String(),
			FactionID:  e.FactionID,
			Storage:    e.Inventory != nil,
			Production: e.Production != nil,
			TradeHub:   e.Hub != nil,
		}
		if e.Hub != nil {
			summary.Offers = e.Hub.Book.Len()
		}
		result = append(result, summary)
	}
	writeJSON(w, result)
}

// handleEntityRoutes dispatches GET /api/v1/entity/{id} and
// POST /api/v1/entity/{id}/offer (admin, rate-limited).
func (s *Server) handleEntityRoutes(limiter *RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/entity/")
		if id, ok := strings.CutSuffix(rest, "/offer"); ok {
			s.adminOnly(RateLimitMiddleware(limiter, func(w http.ResponseWriter, r *http.Request) {
				s.handlePostOffer(w, r, id)
			}))(w, r)
			return
		}
		s.handleEntityDetail(w, r, rest)
	}
}

func (s *Server) handleEntityDetail(w http.ResponseWriter, r *http.Request, id string) {
	e, ok := s.Sim.Entities.Get(id)
	if !ok {
		http.Error(w, "entity not found", http.StatusNotFound)
		return
	}

	detail := map[string]any{
		"id":         e.ID,
		"name":       e.Name,
		"kind":       e.Kind.String(),
		"faction_id": e.FactionID,
	}
	if e.Inventory != nil {
		detail["inventory"] = e.Inventory.Items
	}
	if e.Production != nil {
		detail["production"] = e.Production
	}
	if e.Hub != nil {
		detail["exports"] = e.Hub.Book.Exports
		detail["imports"] = e.Hub.Book.Imports
		detail["history"] = e.Hub.History.Entries
		detail["trade_range"] = e.Hub.TradeRange
		detail["active"] = e.Hub.Active
	}
	writeJSON(w, detail)
}

// handlePostOffer creates an export offer or import request on an
// entity's hub — the explicit-call path of the offer lifecycle.
func (s *Server) handlePostOffer(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	e, ok := s.Sim.Entities.Get(id)
	if !ok || e.Hub == nil {
		http.Error(w, "entity not found or not a trade hub", http.StatusNotFound)
		return
	}

	var req struct {
		ResourceID   string  `json:"resource_id"`
		Amount       float64 `json:"amount"`
		PricePerUnit float64 `json:"price_per_unit"`
		IsExport     bool    `json:"is_export"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if _, known := s.Sim.Resources.Lookup(req.ResourceID); !known {
		http.Error(w, "unknown resource", http.StatusBadRequest)
		return
	}

	var created bool
	if req.IsExport {
		created = e.Hub.PostExport(s.Sim, req.ResourceID, req.Amount, req.PricePerUnit)
	} else {
		created = e.Hub.PostImport(req.ResourceID, req.Amount, req.PricePerUnit)
	}
	if !created {
		http.Error(w, "offer refused (bad amount, unbacked stock, or already outstanding)", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]any{"created": true})
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	type offerEntry struct {
		EntityID string       `json:"entity_id"`
		Offer    *trade.Offer `json:"offer"`
	}

	var exports, imports []offerEntry
	for _, e := range s.Sim.Entities.All() {
		if e.Hub == nil {
			continue
		}
		for _, o := range e.Hub.Book.Exports {
			exports = append(exports, offerEntry{EntityID: e.ID, Offer: o})
		}
		for _, o := range e.Hub.Book.Imports {
			imports = append(imports, offerEntry{EntityID: e.ID, Offer: o})
		}
	}
	writeJSON(w, map[string]any{"exports": exports, "imports": imports})
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Factions.All())
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	type resourceEntry struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		BaseValue float64 `json:"base_value"`
		Price     float64 `json:"price"`
	}

	var result []resourceEntry
	for _, d := range s.Sim.Resources.Definitions() {
		result = append(result, resourceEntry{
			ID:        d.ID,
			Name:      d.Name,
			BaseValue: d.BaseValue,
			Price:     s.Sim.Resources.Price(d.ID),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	events := s.Sim.Events
	// Most recent last in the slice; return most recent first.
	var result []engine.Event
	for i := len(events) - 1; i >= 0 && len(result) < 100; i-- {
		if category != "" && events[i].Category != category {
			continue
		}
		result = append(result, events[i])
	}
	writeJSON(w, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be in [0, 100]", http.StatusBadRequest)
			return
		}
		s.Eng.Speed = req.Speed
		slog.Info("speed changed via API", "speed", req.Speed)
	}
	writeJSON(w, map[string]any{"speed": s.Eng.Speed})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}
	if err := s.DB.SaveWorldState(s.Sim); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true, "sim_time": s.Sim.SimTime()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
