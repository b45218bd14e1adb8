package model

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/keystone-data/landrate/internal/monitoring"
)

// schemaVersion guards against loading payloads written by an incompatible
// build. A mismatch is a corrupt store, not a silent fallback.
const schemaVersion = 1

// Store persists model bundles in a single-row SQLite table. Saves are one
// transaction: a reader either sees the previous complete bundle or the new
// one, never a torn write.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("model: open store %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS model_bundle (
			id              INTEGER PRIMARY KEY CHECK (id = 1),
			schema_version  INTEGER NOT NULL,
			payload         TEXT NOT NULL,
			trained_at      TIMESTAMP NOT NULL,
			saved_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("model: init store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save persists the bundle, replacing any previous one, in one transaction.
func (s *Store) Save(b *Bundle) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("model: encode bundle: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("model: begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM model_bundle`); err != nil {
		return fmt.Errorf("model: clear previous bundle: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO model_bundle (id, schema_version, payload, trained_at) VALUES (1, ?, ?, ?)`,
		schemaVersion, string(payload), b.TrainedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("model: write bundle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("model: commit save: %w", err)
	}

	monitoring.Logf("model: saved bundle trained at %s", b.TrainedAt.Format(time.RFC3339))
	return nil
}

// Load restores the stored bundle. An empty store yields ErrStoreNotFound; a
// present but undecodable or version-mismatched payload yields
// ErrStoreCorrupt. Callers must treat the two differently.
func (s *Store) Load() (*Bundle, error) {
	var version int
	var payload string
	err := s.db.QueryRow(`SELECT schema_version, payload FROM model_bundle WHERE id = 1`).
		Scan(&version, &payload)
	if err == sql.ErrNoRows {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("model: read bundle: %w", err)
	}

	if version != schemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", ErrStoreCorrupt, version, schemaVersion)
	}
	var b Bundle
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	return &b, nil
}

// LoadFromPath is the startup-time convenience: a missing store file maps to
// ErrStoreNotFound without creating an empty database as a side effect.
func LoadFromPath(path string) (*Bundle, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrStoreNotFound
	}
	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load()
}
