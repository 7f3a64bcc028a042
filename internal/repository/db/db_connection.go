// Package db opens the SQLite database and applies the schema.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// One writer: the record processor. API reads share the same connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

// ReadingTables lists the per-kind reading tables. Table names equal the
// reading kind.
var ReadingTables = []string{
	"soil_moisture",
	"temperature",
	"humidity",
	"light",
	"soil_temperature",
	"battery",
}

const readingTableTmpl = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TIMESTAMP NOT NULL,
    value REAL NOT NULL
);
`

const readingIndexTmpl = `CREATE INDEX IF NOT EXISTS idx_%[1]s_timestamp ON %[1]s (timestamp);`

const schemaWateringEvents = `
CREATE TABLE IF NOT EXISTS watering_events (
    id TEXT PRIMARY KEY,
    pump_id INTEGER NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    water_pumped REAL NOT NULL
);
`

const indexWateringEvents = `CREATE INDEX IF NOT EXISTS idx_watering_events_pump_time ON watering_events (pump_id, timestamp);`

const schemaActuatorStates = `
CREATE TABLE IF NOT EXISTS actuator_states (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TIMESTAMP NOT NULL,
    window_position INTEGER NOT NULL,
    pump_bits INTEGER NOT NULL
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL CHECK (username <> '' AND username = lower(trim(username))),
    password_hash TEXT NOT NULL CHECK (password_hash <> '')
);
`

func schemaStatements() []string {
	stmts := make([]string, 0, 2*len(ReadingTables)+4)
	for _, t := range ReadingTables {
		stmts = append(stmts, fmt.Sprintf(readingTableTmpl, t), fmt.Sprintf(readingIndexTmpl, t))
	}
	return append(stmts, schemaWateringEvents, indexWateringEvents, schemaActuatorStates, schemaUsers)
}

// EnsureSchema creates every table in one transaction.
func EnsureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range schemaStatements() {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
