package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// fileSuffix is appended to the key to name a genome file, e.g. "best_genome.json".
const fileSuffix = "_genome.json"

// FileStore keeps one JSON genome document per key inside a directory. The
// directory is created on the first save.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file a key is stored in.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+fileSuffix)
}

// Save writes g as the document for key, replacing any previous one.
func (s *FileStore) Save(_ context.Context, key string, g *evolve.Genome) error {
	payload, err := evolve.EncodeGenome(key, g)
	if err != nil {
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}

	// Write to a temp file first so a crash never leaves a truncated document behind.
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("save genome %q: %w: %w", key, evolve.ErrStorageWrite, err)
	}
	return nil
}

// Load reads the document for key. A missing file wraps evolve.ErrGenomeNotFound.
func (s *FileStore) Load(_ context.Context, key string) (*evolve.Genome, error) {
	payload, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load genome %q from %s: %w", key, s.Path(key), evolve.ErrGenomeNotFound)
		}
		return nil, fmt.Errorf("load genome %q: %w", key, err)
	}
	g, err := evolve.DecodeGenome(payload)
	if err != nil {
		return nil, fmt.Errorf("load genome %q: %w", key, err)
	}
	return g, nil
}
