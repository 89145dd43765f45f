// Package db persists topology snapshots so operators can compare what
// an enclosure looked like before and after recabling or a disk swap.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultPath is the default database location
const DefaultPath = "/var/lib/sasdevices/snapshots.db"

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// New opens or creates the SQLite database at the given path
func New(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// migrate runs the database schema migrations
func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	var version int
	err = d.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return err
	}

	migrations := []string{
		migrationV1,
	}

	for i, migration := range migrations {
		v := i + 1
		if v <= version {
			continue
		}

		tx, err := d.conn.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(migration); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d failed: %w", v, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// migrationV1 creates the initial schema
const migrationV1 = `
-- One row per stored enumeration run
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    hostname TEXT,
    created_at INTEGER NOT NULL,

    hosts INTEGER NOT NULL DEFAULT 0,
    expanders INTEGER NOT NULL DEFAULT 0,
    enclosure_groups INTEGER NOT NULL DEFAULT 0,
    orphans INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

-- Enclosure groups as rendered for the operator
CREATE TABLE IF NOT EXISTS run_groups (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    group_idx INTEGER NOT NULL,
    label TEXT NOT NULL,
    max_paths INTEGER NOT NULL,
    enclosures TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_groups_run ON run_groups(run_id);

-- Logical units per run; group_idx is NULL for orphans
CREATE TABLE IF NOT EXISTS run_units (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    group_idx INTEGER,
    lu TEXT NOT NULL,
    vendor TEXT,
    model TEXT,
    rev TEXT,
    bay INTEGER,
    size TEXT,
    paths INTEGER NOT NULL,
    under_pathed INTEGER NOT NULL DEFAULT 0,
    blocks TEXT,
    sgs TEXT
);

CREATE INDEX IF NOT EXISTS idx_units_run ON run_units(run_id);
CREATE INDEX IF NOT EXISTS idx_units_lu ON run_units(lu);
`
