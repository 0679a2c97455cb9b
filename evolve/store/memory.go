package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// MemoryStore keeps genomes in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	genomes map[string]*evolve.Genome
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{genomes: make(map[string]*evolve.Genome)}
}

// Save stores a copy of g under key.
func (s *MemoryStore) Save(_ context.Context, key string, g *evolve.Genome) error {
	if g == nil {
		return fmt.Errorf("save genome %q: nil genome: %w", key, evolve.ErrStorageWrite)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.genomes[key] = g.Clone()
	return nil
}

// Load returns a copy of the genome stored under key.
func (s *MemoryStore) Load(_ context.Context, key string) (*evolve.Genome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.genomes[key]
	if !ok {
		return nil, fmt.Errorf("load genome %q: %w", key, evolve.ErrGenomeNotFound)
	}
	return g.Clone(), nil
}

// Len returns the number of stored genomes.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.genomes)
}
