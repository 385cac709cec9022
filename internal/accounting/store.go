// Package accounting implements the Accounting Store: a single SQLite file
// holding per-model request/runtime history and pricing configuration,
// keyed by a hashed safe name so arbitrary model names never appear in SQL
// identifiers. Grounded in the original implementation's Monitor class
// (core/data_manager.py), generalized from its connection-pool pattern to
// database/sql's own pool and from raw sqlite3 to modernc.org/sqlite.
package accounting

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Store owns the accounting database and the original-name -> safe-name map.
type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	safeFor map[string]string // original name -> safe name
}

// Open opens (creating if absent) the SQLite file at path and ensures the
// global tables exist. Per-model tables are created lazily by EnsureModel.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("accounting: create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("accounting: open %s: %w", path, err)
	}
	// SQLite tolerates at most one writer; the pool must not hand out
	// concurrent connections that would collide on the same file.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, safeFor: make(map[string]string)}
	if err := s.initGlobalTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadNameMap(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initGlobalTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS model_name_map (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			original TEXT UNIQUE NOT NULL,
			safe TEXT UNIQUE NOT NULL
		);
		CREATE TABLE IF NOT EXISTS program_runtime (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			start_ts REAL NOT NULL,
			end_ts REAL NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("accounting: init global tables: %w", err)
	}
	return nil
}

func (s *Store) loadNameMap() error {
	rows, err := s.db.Query(`SELECT original, safe FROM model_name_map`)
	if err != nil {
		return fmt.Errorf("accounting: load name map: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var original, safe string
		if err := rows.Scan(&original, &safe); err != nil {
			return err
		}
		s.safeFor[original] = safe
	}
	return rows.Err()
}

// safeName derives the filesystem/SQL-identifier-safe token for a model
// name: "model_" plus the first 16 hex characters of its SHA-256 digest.
func safeName(model string) string {
	sum := sha256.Sum256([]byte(model))
	return fmt.Sprintf("model_%x", sum[:8])
}

// EnsureModel registers model in the name map (if new) and creates its
// per-model tables. Idempotent: safe to call once per known model at
// startup and again whenever a new model is added to the catalogue.
func (s *Store) EnsureModel(model string) error {
	s.mu.RLock()
	_, known := s.safeFor[model]
	s.mu.RUnlock()
	if known {
		return nil
	}

	safe := safeName(model)
	if _, err := s.db.Exec(
		`INSERT OR IGNORE INTO model_name_map (original, safe) VALUES (?, ?)`,
		model, safe,
	); err != nil {
		return fmt.Errorf("accounting: register model %s: %w", model, err)
	}

	if err := s.createModelTables(safe); err != nil {
		return err
	}

	s.mu.Lock()
	s.safeFor[model] = safe
	s.mu.Unlock()
	return nil
}

func (s *Store) createModelTables(safe string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts REAL NOT NULL,
			in_tok INTEGER NOT NULL,
			out_tok INTEGER NOT NULL,
			cache_n INTEGER NOT NULL DEFAULT 0,
			prompt_n INTEGER NOT NULL DEFAULT 0
		)`, safe),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_requests_ts_idx ON %s_requests (ts)`, safe, safe),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_runtime (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			start_ts REAL NOT NULL,
			end_ts REAL NOT NULL
		)`, safe),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_tier_pricing (
			tier_idx INTEGER PRIMARY KEY,
			in_min INTEGER NOT NULL,
			in_max INTEGER NOT NULL,
			out_min INTEGER NOT NULL,
			out_max INTEGER NOT NULL,
			in_price REAL NOT NULL,
			out_price REAL NOT NULL,
			cache_ok INTEGER NOT NULL DEFAULT 0,
			cache_write_price REAL NOT NULL DEFAULT 0,
			cache_read_price REAL NOT NULL DEFAULT 0
		)`, safe),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_hourly_price (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			price REAL NOT NULL DEFAULT 0
		)`, safe),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_billing_mode (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			use_tiered INTEGER NOT NULL DEFAULT 1
		)`, safe),
		fmt.Sprintf(`INSERT OR IGNORE INTO %s_hourly_price (id, price) VALUES (1, 0)`, safe),
		fmt.Sprintf(`INSERT OR IGNORE INTO %s_billing_mode (id, use_tiered) VALUES (1, 1)`, safe),
		fmt.Sprintf(`INSERT OR IGNORE INTO %s_tier_pricing
			(tier_idx, in_min, in_max, out_min, out_max, in_price, out_price, cache_ok, cache_write_price, cache_read_price)
			VALUES (1, 0, -1, 0, -1, 0, 0, 0, 0, 0)`, safe),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("accounting: create tables for %s: %w", safe, err)
		}
	}
	return nil
}

// SafeName returns the hashed table-namespace token for model, if known.
func (s *Store) SafeName(model string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	safe, ok := s.safeFor[model]
	return safe, ok
}

// KnownModels returns every model name the store has ever seen.
func (s *Store) KnownModels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.safeFor))
	for name := range s.safeFor {
		out = append(out, name)
	}
	return out
}
