/*
Package sqlite provides a SQLite-backed implementation of the KV
persistence contract.

PURPOSE:
  One table, one row per record key. The engine's records are whole JSON
  documents, so the storage needs nothing relational — SQLite is here
  for durability, atomic row swaps, and a single file on disk.

SCHEMA:
  kv_records(key TEXT PRIMARY KEY, value TEXT NOT NULL,
             updated_at TEXT NOT NULL)

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - Readers don't block the single writer
  - Better crash recovery between mutation and save

CONCURRENCY:
  A sync.RWMutex serializes access. The engine has one logical writer
  (the app layer), but HTTP handlers may read concurrently.

USAGE:
  store, err := sqlite.New("./fieldquest.db")  // or ":memory:"
  if err != nil { log.Fatal(err) }
  defer store.Close()

SEE ALSO:
  - persist/kv.go: Interface definition and key layout
  - persist/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fieldquest/engine/core"
)

// KV implements persist.KV on SQLite.
type KV struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database. Use ":memory:" for tests.
func New(dbPath string) (*KV, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &KV{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *KV) Close() error {
	return s.db.Close()
}

func (s *KV) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_records (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns the record bytes, ok=false when absent.
func (s *KV) Load(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_records WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: load %s: %v", core.ErrStoreFailed, key, err)
	}
	return []byte(value), true, nil
}

// Save upserts the record.
func (s *KV) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		                               updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", core.ErrStoreFailed, key, err)
	}
	return nil
}

// Clear removes the given keys. Missing keys are not an error.
func (s *KV) Clear(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: clear: %v", core.ErrStoreFailed, err)
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv_records WHERE key = ?`, k); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: clear %s: %v", core.ErrStoreFailed, k, err)
		}
	}
	return tx.Commit()
}
