package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps genome documents in a SQLite database, one row per key.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates a store for the database at path. Call Init before use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the genomes table. It is idempotent.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// Save upserts the genome document for key.
func (s *SQLiteStore) Save(ctx context.Context, key string, g *evolve.Genome) error {
	db, err := s.getDB()
	if err != nil {
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}

	payload, err := evolve.EncodeGenome(key, g)
	if err != nil {
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO genomes (name, schema_version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, key, evolve.CurrentSchemaVersion, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}
	return nil
}

// Load reads the genome document for key. A missing row wraps evolve.ErrGenomeNotFound.
func (s *SQLiteStore) Load(ctx context.Context, key string) (*evolve.Genome, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, fmt.Errorf("load genome %q: %w", key, err)
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM genomes WHERE name = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load genome %q: %w", key, evolve.ErrGenomeNotFound)
		}
		return nil, fmt.Errorf("load genome %q: %w", key, err)
	}

	g, err := evolve.DecodeGenome(payload)
	if err != nil {
		return nil, fmt.Errorf("load genome %q: %w", key, err)
	}
	return g, nil
}

// Keys lists every stored key in alphabetical order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT name FROM genomes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close releases the database handle. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS genomes (
			name TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	return err
}
