// Package config loads the simulation configuration from YAML with
// sensible defaults when no file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the tradewinds simulation.
type Config struct {
	Simulation Simulation `yaml:"simulation"`
	Trading    Trading    `yaml:"trading"`
	Storage    Storage    `yaml:"storage"`
	Server     Server     `yaml:"server"`
}

// Simulation holds tick-loop settings.
type Simulation struct {
	Seed         int64         `yaml:"seed"`
	TickInterval time.Duration `yaml:"tick_interval"` // Wall-clock time per tick at speed 1.0
	BaseDelta    float64       `yaml:"base_delta"`    // Sim-seconds advanced per tick
	Speed        float64       `yaml:"speed"`         // Global speed multiplier
	ReportEvery  uint64        `yaml:"report_every"`  // Ticks between periodic reports
	SaveEvery    uint64        `yaml:"save_every"`    // Ticks between state snapshots
}

// Trading holds the tunables of the trade and production systems.
type Trading struct {
	SurplusThreshold    float64 `yaml:"surplus_threshold"`    // On-hand above this is exportable
	NecessityThreshold  float64 `yaml:"necessity_threshold"`  // On-hand below this triggers imports
	EvalInterval        float64 `yaml:"eval_interval"`        // Sim-seconds between hub evaluations
	ExportMarkup        float64 `yaml:"export_markup"`        // Ask = market price × markup
	ImportMarkup        float64 `yaml:"import_markup"`        // Ceiling = market price × markup
	StartingBalance     float64 `yaml:"starting_balance"`     // Lazily assigned faction balance
	HistoryCapacity     int     `yaml:"history_capacity"`     // Per-hub transaction log entries
	SubsistenceResource string  `yaml:"subsistence_resource"` // Always "needed" by settlements
	PriceDriftBand      float64 `yaml:"price_drift_band"`     // Max relative market price deviation
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds HTTP API settings.
type Server struct {
	Port     int    `yaml:"port"`
	AdminKey string `yaml:"admin_key"` // Bearer token for POST endpoints. Empty = POST disabled.
}

// Default returns the configuration used when no file overrides it.
// The trading numbers are the canonical source defaults.
func Default() Config {
	return Config{
		Simulation: Simulation{
			Seed:         42,
			TickInterval: time.Second,
			BaseDelta:    1.0,
			Speed:        1.0,
			ReportEvery:  300,
			SaveEvery:    600,
		},
		Trading: Trading{
			SurplusThreshold:    50,
			NecessityThreshold:  10,
			EvalInterval:        60,
			ExportMarkup:        1.10,
			ImportMarkup:        1.20,
			StartingBalance:     10000,
			HistoryCapacity:     20,
			SubsistenceResource: "grain",
			PriceDriftBand:      0.25,
		},
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/tradewinds.db",
		},
		Server: Server{
			Port: 8080,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error: the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the trade system cannot operate under.
func (c Config) Validate() error {
	t := c.Trading
	if t.NecessityThreshold >= t.SurplusThreshold {
		// Overlapping thresholds would let one resource trigger both
		// an export offer and an import request in the same pass.
		return fmt.Errorf("necessity_threshold (%g) must be below surplus_threshold (%g)",
			t.NecessityThreshold, t.SurplusThreshold)
	}
	if t.EvalInterval <= 0 {
		return fmt.Errorf("eval_interval must be positive, got %g", t.EvalInterval)
	}
	if t.ExportMarkup <= 0 || t.ImportMarkup <= 0 {
		return fmt.Errorf("markups must be positive")
	}
	if t.HistoryCapacity <= 0 {
		return fmt.Errorf("history_capacity must be positive, got %d", t.HistoryCapacity)
	}
	if c.Simulation.BaseDelta <= 0 {
		return fmt.Errorf("base_delta must be positive, got %g", c.Simulation.BaseDelta)
	}
	return nil
}
