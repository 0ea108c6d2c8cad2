// Package persistence provides SQLite-based economy state storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/entity"
	"github.com/talgya/tradewinds/internal/faction"
	"github.com/talgya/tradewinds/internal/inventory"
	"github.com/talgya/tradewinds/internal/production"
	"github.com/talgya/tradewinds/internal/trade"
)

// DB wraps a SQLite connection for economy state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind INTEGER NOT NULL,
		faction_id TEXT NOT NULL,
		inventory_json TEXT,
		production_json TEXT,
		hub_json TEXT
	);

	CREATE TABLE IF NOT EXISTS factions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		balance REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sim_time REAL NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_sim_time ON events(sim_time);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEntities writes all entities to the database (full replace).
// Capability records are stored as JSON columns; a NULL column means the
// entity lacks that capability.
func (db *DB) SaveEntities(entities []*entity.Entity) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entities"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO entities
		(id, name, kind, faction_id, inventory_json, production_json, hub_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entities {
		invJSON := marshalOrNil(e.Inventory)
		prodJSON := marshalOrNil(e.Production)
		hubJSON := marshalOrNil(e.Hub)

		if _, err := stmt.Exec(e.ID, e.Name, e.Kind, e.FactionID, invJSON, prodJSON, hubJSON); err != nil {
			return fmt.Errorf("insert entity %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// LoadEntities restores all entities. Trade params are configuration,
// not state, so the caller re-applies them to restored hubs.
func (db *DB) LoadEntities(params trade.Params) ([]*entity.Entity, error) {
	rows, err := db.conn.Queryx(
		"SELECT id, name, kind, faction_id, inventory_json, production_json, hub_json FROM entities")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Entity
	for rows.Next() {
		var (
			e                          entity.Entity
			invJSON, prodJSON, hubJSON *string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Kind, &e.FactionID, &invJSON, &prodJSON, &hubJSON); err != nil {
			return nil, err
		}

		if invJSON != nil {
			inv := inventory.New()
			if err := json.Unmarshal([]byte(*invJSON), inv); err != nil {
				return nil, fmt.Errorf("entity %s inventory: %w", e.ID, err)
			}
			e.Inventory = inv
		}
		if prodJSON != nil {
			var fac production.Facility
			if err := json.Unmarshal([]byte(*prodJSON), &fac); err != nil {
				return nil, fmt.Errorf("entity %s production: %w", e.ID, err)
			}
			e.Production = &fac
		}
		if hubJSON != nil {
			var hub trade.Hub
			if err := json.Unmarshal([]byte(*hubJSON), &hub); err != nil {
				return nil, fmt.Errorf("entity %s hub: %w", e.ID, err)
			}
			hub.ApplyParams(params)
			e.Hub = &hub
		}

		out = append(out, &e)
	}
	return out, rows.Err()
}

// SaveFactions writes all factions to the database (full replace).
func (db *DB) SaveFactions(factions []*faction.Faction) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM factions"); err != nil {
		return err
	}

	for _, f := range factions {
		if _, err := tx.Exec(
			"INSERT INTO factions (id, name, balance) VALUES (?, ?, ?)",
			f.ID, f.Name, f.Balance,
		); err != nil {
			return fmt.Errorf("insert faction %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

// LoadFactions restores all factions.
func (db *DB) LoadFactions() ([]*faction.Faction, error) {
	var out []*faction.Faction
	err := db.conn.Select(&out, "SELECT id, name, balance FROM factions ORDER BY id")
	return out, err
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		if _, err := tx.Exec(
			"INSERT INTO events (sim_time, description, category) VALUES (?, ?, ?)",
			e.SimTime, e.Description, e.Category,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N persisted events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT sim_time, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasWorldState reports whether a previous snapshot exists.
func (db *DB) HasWorldState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM entities"); err != nil {
		return false
	}
	return count > 0
}

// SaveWorldState performs a full snapshot of the simulation.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	entities := sim.Entities.All()
	slog.Info("saving world state", "entities", len(entities))

	if err := db.SaveEntities(entities); err != nil {
		return fmt.Errorf("save entities: %w", err)
	}
	if err := db.SaveFactions(sim.Factions.All()); err != nil {
		return fmt.Errorf("save factions: %w", err)
	}
	if err := db.SaveEvents(sim.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("sim_time", strconv.FormatFloat(sim.SimTime(), 'f', -1, 64)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}

func marshalOrNil(v any) *string {
	// Typed nils arrive as non-nil interfaces; marshal and compare.
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return nil
	}
	s := string(raw)
	return &s
}
