// Command tradesim runs the TRADEWINDS autonomous trade economy simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"github.com/talgya/tradewinds/internal/api"
	"github.com/talgya/tradewinds/internal/config"
	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/entity"
	"github.com/talgya/tradewinds/internal/faction"
	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/persistence"
	"github.com/talgya/tradewinds/internal/production"
	"github.com/talgya/tradewinds/internal/recipe"
	"github.com/talgya/tradewinds/internal/resource"
	"github.com/talgya/tradewinds/internal/trade"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("TRADEWINDS — Autonomous Trade Economy Simulation")

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	tradeParams := trade.Params{
		SurplusThreshold:   cfg.Trading.SurplusThreshold,
		NecessityThreshold: cfg.Trading.NecessityThreshold,
		EvalInterval:       cfg.Trading.EvalInterval,
		ExportMarkup:       cfg.Trading.ExportMarkup,
		ImportMarkup:       cfg.Trading.ImportMarkup,
		HistoryCapacity:    cfg.Trading.HistoryCapacity,
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(cfg.Storage.DataDir, 0755)
	db, err := persistence.Open(cfg.Storage.SQLitePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.SQLitePath)

	// ── Registries (always rebuilt — definitions are configuration) ──
	resources := resource.NewRegistry(cfg.Simulation.Seed, cfg.Trading.PriceDriftBand, seedResources())
	recipes := recipe.NewRegistry()
	for _, rec := range seedRecipes() {
		if err := recipes.Register(rec); err != nil {
			slog.Error("bad seed recipe", "error", err)
			os.Exit(1)
		}
	}
	factions := faction.NewRegistry(cfg.Trading.StartingBalance)

	// ── Load or Generate World State ─────────────────────────────────
	entities := entity.NewRegistry()
	var startSimTime float64

	if db.HasWorldState() {
		slog.Info("found saved world state, loading...")

		restored, err := db.LoadEntities(tradeParams)
		if err != nil {
			slog.Error("failed to load entities", "error", err)
			os.Exit(1)
		}
		for _, e := range restored {
			entities.Add(e)
		}

		savedFactions, err := db.LoadFactions()
		if err != nil {
			slog.Error("failed to load factions", "error", err)
			os.Exit(1)
		}
		for _, f := range savedFactions {
			factions.Put(f)
		}

		if timeStr, err := db.GetMeta("sim_time"); err == nil {
			if t, err := strconv.ParseFloat(timeStr, 64); err == nil {
				startSimTime = t
			}
		}

		slog.Info("world state restored",
			"entities", entities.Len(),
			"factions", len(savedFactions),
			"sim_time", engine.FormatSimTime(startSimTime),
		)
	} else {
		slog.Info("no saved state found, seeding new world...")
		seedWorld(entities, factions, tradeParams, cfg.Trading.SubsistenceResource)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(entities, resources, recipes, factions)
	sim.SetSimTime(startSimTime)

	// Save on fresh generation only (loaded worlds are already saved).
	if startSimTime == 0 {
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	eng := engine.NewEngine()
	eng.Speed = cfg.Simulation.Speed
	eng.Interval = cfg.Simulation.TickInterval
	eng.BaseDelta = cfg.Simulation.BaseDelta
	eng.ReportEvery = cfg.Simulation.ReportEvery
	eng.SaveEvery = cfg.Simulation.SaveEvery

	eng.OnTick = sim.Tick
	eng.OnReport = sim.Report
	eng.OnSave = func(tick uint64) {
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("periodic save failed", "tick", tick, "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := cfg.Server.AdminKey
	if envKey := os.Getenv("TRADESIM_ADMIN_KEY"); envKey != "" {
		adminKey = envKey
	}
	if adminKey == "" {
		slog.Warn("no admin key set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Port:     cfg.Server.Port,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nTradewinds is open for business: %d entities, %d resources, %d recipes.\n",
		entities.Len(), len(resources.Definitions()), recipes.Len())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)
	if startSimTime > 0 {
		fmt.Printf("Resuming from %s\n", engine.FormatSimTime(startSimTime))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. World state saved.")
}

// seedResources returns the tradeable resource kinds and their base values.
func seedResources() []resource.Definition {
	return []resource.Definition{
		{ID: "grain", Name: "Grain", BaseValue: 2},
		{ID: "fish", Name: "Fish", BaseValue: 2},
		{ID: "wood", Name: "Wood", BaseValue: 3},
		{ID: "stone", Name: "Stone", BaseValue: 3},
		{ID: "iron_ore", Name: "Iron Ore", BaseValue: 4},
		{ID: "coal", Name: "Coal", BaseValue: 4},
		{ID: "planks", Name: "Planks", BaseValue: 6},
		{ID: "tools", Name: "Tools", BaseValue: 10},
		{ID: "ale", Name: "Ale", BaseValue: 7},
	}
}

// seedRecipes returns the production recipes facilities can run.
func seedRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		{
			ID:       "smeltery",
			Inputs:   map[string]float64{"iron_ore": 4, "coal": 2},
			Outputs:  map[string]float64{"tools": 1},
			Duration: 90,
		},
		{
			ID:       "sawmill",
			Inputs:   map[string]float64{"wood": 3},
			Outputs:  map[string]float64{"planks": 2},
			Duration: 45,
		},
		{
			ID:       "brewery",
			Inputs:   map[string]float64{"grain": 5},
			Outputs:  map[string]float64{"ale": 2},
			Duration: 60,
		},
	}
}

// seedWorld populates a fresh world: a handful of settlements and
// production sites spread across three factions, stocked unevenly so
// trade starts flowing within the first few evaluation intervals.
func seedWorld(entities *entity.Registry, factions *faction.Registry, params trade.Params, subsistence string) {
	factions.Put(&faction.Faction{ID: "northern-league", Name: "Northern League", Balance: 10000})
	factions.Put(&faction.Faction{ID: "ember-guild", Name: "Guild of the Ember Coast", Balance: 10000})
	factions.Put(&faction.Faction{ID: "free-ports", Name: "The Free Ports", Balance: 10000})

	type seedEntity struct {
		name      string
		kind      entity.Kind
		factionID string
		recipeID  string
		stock     map[string]float64
	}

	seeds := []seedEntity{
		{
			name: "Millbrook", kind: entity.KindSettlement, factionID: "northern-league",
			stock: map[string]float64{"grain": 120, "wood": 30, "fish": 15},
		},
		{
			name: "Ironhold", kind: entity.KindSettlement, factionID: "ember-guild",
			stock: map[string]float64{"iron_ore": 90, "coal": 70, "grain": 6},
		},
		{
			name: "Saltmarsh", kind: entity.KindSettlement, factionID: "free-ports",
			stock: map[string]float64{"fish": 140, "grain": 4},
		},
		{
			name: "Emberworks", kind: entity.KindFacility, factionID: "ember-guild",
			recipeID: "smeltery",
			stock:    map[string]float64{"iron_ore": 8, "coal": 5},
		},
		{
			name: "Pinefall Mill", kind: entity.KindFacility, factionID: "northern-league",
			recipeID: "sawmill",
			stock:    map[string]float64{"wood": 80},
		},
		{
			name: "Old Cellar Brewery", kind: entity.KindFacility, factionID: "free-ports",
			recipeID: "brewery",
			stock:    map[string]float64{"grain": 25},
		},
	}

	for _, s := range seeds {
		e := &entity.Entity{
			ID:        uuid.NewString()[:8],
			Name:      s.name,
			Kind:      s.kind,
			FactionID: s.factionID,
			Inventory: inventory.New(),
		}
		for id, qty := range s.stock {
			e.Inventory.Add(id, qty)
		}
		if s.recipeID != "" {
			e.Production = production.NewFacility(e.ID, s.recipeID)
		}
		hub := trade.NewHub(e.ID, params)
		hub.TradeRange = 5
		if s.kind == entity.KindSettlement {
			hub.Subsistence = subsistence
		}
		e.Hub = hub
		entities.Add(e)

		slog.Info("seeded entity",
			"id", e.ID,
			"name", e.Name,
			"kind", e.Kind.String(),
			"faction", e.FactionID,
		)
	}
}
