package store

import (
	"context"
	"fmt"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// NewStore builds the genome store named by cfg.Backend and initializes it.
func NewStore(ctx context.Context, cfg evolve.StorageConfig) (evolve.GenomeStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Dir), nil
	case "sqlite":
		s := NewSQLiteStore(cfg.SQLitePath)
		if err := s.Init(ctx); err != nil {
			return nil, fmt.Errorf("init sqlite store %s: %w", cfg.SQLitePath, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}

// CloseIfSupported closes stores that hold resources.
func CloseIfSupported(s evolve.GenomeStore) error {
	closer, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
