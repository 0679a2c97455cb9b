package evolve

import (
	"context"
	"encoding/json"
	"fmt"
)

// CurrentSchemaVersion is the version written into every genome document.
const CurrentSchemaVersion = 1

// GenomeStore persists genomes under string keys. Save overwrites any genome
// already stored under the key. Load returns an error wrapping ErrGenomeNotFound
// when nothing is stored under the key; Save failures wrap ErrStorageWrite.
type GenomeStore interface {
	Save(ctx context.Context, key string, g *Genome) error
	Load(ctx context.Context, key string) (*Genome, error)
}

// GenomeDocument is the serialized form of a genome: its classifiers in order,
// tagged with a schema version for forward compatibility.
type GenomeDocument struct {
	SchemaVersion int                 `json:"schema_version"`
	Key           string              `json:"key"`
	Classifiers   []*LinearClassifier `json:"classifiers"`
}

// EncodeGenome serializes g as an indented JSON genome document.
func EncodeGenome(key string, g *Genome) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("encode genome %q: nil genome", key)
	}
	doc := GenomeDocument{
		SchemaVersion: CurrentSchemaVersion,
		Key:           key,
		Classifiers:   g.Classifiers,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeGenome parses a genome document and checks its schema version and shape.
func DecodeGenome(data []byte) (*Genome, error) {
	var doc GenomeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode genome: %w", err)
	}
	if doc.SchemaVersion != CurrentSchemaVersion {
		return nil, fmt.Errorf("decode genome %q: schema version %d: %w", doc.Key, doc.SchemaVersion, ErrVersionMismatch)
	}
	g := &Genome{Classifiers: make([]*LinearClassifier, 0, len(doc.Classifiers))}
	for i, c := range doc.Classifiers {
		if c == nil {
			return nil, fmt.Errorf("decode genome %q: classifier %d is null", doc.Key, i)
		}
		if c.Weights == nil {
			c.Weights = []float64{}
		}
		g.Classifiers = append(g.Classifiers, c)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("decode genome %q: %w", doc.Key, err)
	}
	return g, nil
}
