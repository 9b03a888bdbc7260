// Package store provides the SQLite-backed library of rules and proofs plus
// a small settings key-value table.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"zxd/internal/cas"
)

// ErrNotFound is returned when a requested document is not in the library.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS rules (
	id         BLOB PRIMARY KEY,
	name       TEXT NOT NULL,
	document   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rules_name ON rules(name);

CREATE TABLE IF NOT EXISTS proofs (
	id         BLOB PRIMARY KEY,
	name       TEXT NOT NULL,
	document   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_proofs_name ON proofs(name);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the database at the given path and applies the
// schema.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Enable WAL mode
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Wait up to 5s on lock instead of failing immediately
	conn.Exec("PRAGMA busy_timeout=5000")

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Entry is one stored document: its content id, user-facing name and the
// JSON document itself.
type Entry struct {
	ID       string
	Name     string
	Document []byte
}

// PutRule stores a rule document if not already present (idempotent by
// content id). Returns the hex content id.
func (db *DB) PutRule(name string, document []byte) (string, error) {
	return db.put("rules", "rule", name, document)
}

// PutProof stores a proof document if not already present.
func (db *DB) PutProof(name string, document []byte) (string, error) {
	return db.put("proofs", "proof", name, document)
}

func (db *DB) put(table, kind, name string, document []byte) (string, error) {
	id, err := cas.DocumentIDHex(kind, json.RawMessage(document))
	if err != nil {
		return "", fmt.Errorf("computing %s id: %w", kind, err)
	}
	_, err = db.conn.Exec(
		"INSERT OR IGNORE INTO "+table+" (id, name, document, created_at) VALUES (?, ?, ?, ?)",
		id, name, string(document), cas.NowMs())
	if err != nil {
		return "", fmt.Errorf("inserting %s: %w", kind, err)
	}
	return id, nil
}

// GetRule fetches a rule by content id or, failing that, by name.
func (db *DB) GetRule(idOrName string) (Entry, error) {
	return db.get("rules", idOrName)
}

// GetProof fetches a proof by content id or, failing that, by name.
func (db *DB) GetProof(idOrName string) (Entry, error) {
	return db.get("proofs", idOrName)
}

func (db *DB) get(table, idOrName string) (Entry, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, document FROM "+table+" WHERE id = ? OR name = ? ORDER BY created_at LIMIT 1",
		idOrName, idOrName)
	var e Entry
	var doc string
	if err := row.Scan(&e.ID, &e.Name, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, fmt.Errorf("%q: %w", idOrName, ErrNotFound)
		}
		return Entry{}, fmt.Errorf("querying %s: %w", table, err)
	}
	e.Document = []byte(doc)
	return e, nil
}

// ListRules returns all stored rules ordered by name.
func (db *DB) ListRules() ([]Entry, error) {
	return db.list("rules")
}

// ListProofs returns all stored proofs ordered by name.
func (db *DB) ListProofs() ([]Entry, error) {
	return db.list("proofs")
}

func (db *DB) list(table string) ([]Entry, error) {
	rows, err := db.conn.Query("SELECT id, name, document FROM " + table + " ORDER BY name, created_at")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var doc string
		if err := rows.Scan(&e.ID, &e.Name, &doc); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		e.Document = []byte(doc)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteRule removes a rule by content id or name.
func (db *DB) DeleteRule(idOrName string) error {
	return db.delete("rules", idOrName)
}

// DeleteProof removes a proof by content id or name.
func (db *DB) DeleteProof(idOrName string) error {
	return db.delete("proofs", idOrName)
}

func (db *DB) delete(table, idOrName string) error {
	res, err := db.conn.Exec("DELETE FROM "+table+" WHERE id = ? OR name = ?", idOrName, idOrName)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", idOrName, ErrNotFound)
	}
	return nil
}

// SetSetting stores a settings value, replacing any previous one.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

// GetSetting reads a settings value, returning the fallback when unset.
func (db *DB) GetSetting(key, fallback string) (string, error) {
	row := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fallback, nil
		}
		return "", fmt.Errorf("reading setting %q: %w", key, err)
	}
	return v, nil
}
