package evolve

import (
	"fmt"
	"math/rand"
	"strings"
)

// Genome is the complete decision policy of one agent: an ordered, fixed-length
// set of linear classifiers that all accept the same feature length.
type Genome struct {
	Classifiers []*LinearClassifier `json:"classifiers"`
}

// NewGenome creates a genome from the given classifiers. Every classifier is deep
// copied, so the caller keeps ownership of its arguments.
func NewGenome(classifiers ...*LinearClassifier) *Genome {
	g := &Genome{Classifiers: make([]*LinearClassifier, 0, len(classifiers))}
	for _, c := range classifiers {
		g.Classifiers = append(g.Classifiers, c.Copy())
	}
	return g
}

// NewRandomGenome creates a genome of numClassifiers freshly randomized classifiers,
// each over numFeatures inputs.
func NewRandomGenome(numClassifiers, numFeatures int, rng *rand.Rand) *Genome {
	g := &Genome{Classifiers: make([]*LinearClassifier, numClassifiers)}
	for i := range g.Classifiers {
		g.Classifiers[i] = NewLinearClassifier(numFeatures, rng)
	}
	return g
}

// Clone returns a deep copy of the genome. No weight slice is shared with the original.
func (g *Genome) Clone() *Genome {
	if g == nil {
		return nil
	}
	return NewGenome(g.Classifiers...)
}

// Len returns the number of classifiers in the genome.
func (g *Genome) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Classifiers)
}

// FeatureLen returns the feature length of the first classifier, or 0 for an empty genome.
func (g *Genome) FeatureLen() int {
	if g.Len() == 0 {
		return 0
	}
	return g.Classifiers[0].Len()
}

// Validate checks that every classifier accepts the same feature length.
func (g *Genome) Validate() error {
	if g.Len() == 0 {
		return nil
	}
	n := g.FeatureLen()
	for i, c := range g.Classifiers {
		if c.Len() != n {
			return fmt.Errorf("classifier %d has %d weights, expected %d: %w", i, c.Len(), n, ErrLengthMismatch)
		}
	}
	return nil
}

// Compatible reports whether two genomes can be recombined: both non-empty and
// of the same shape.
func (g *Genome) Compatible(other *Genome) bool {
	if g.Len() == 0 || other.Len() == 0 || g.Len() != other.Len() {
		return false
	}
	for i, c := range g.Classifiers {
		if c.Len() != other.Classifiers[i].Len() {
			return false
		}
	}
	return true
}

// Equal reports whether two genomes are structurally identical: same classifier count
// and bit-for-bit equal weights and biases.
func (g *Genome) Equal(other *Genome) bool {
	if g.Len() != other.Len() {
		return false
	}
	for i, c := range g.Classifiers {
		o := other.Classifiers[i]
		if c.Bias != o.Bias || len(c.Weights) != len(o.Weights) {
			return false
		}
		for j, w := range c.Weights {
			if w != o.Weights[j] {
				return false
			}
		}
	}
	return true
}

// String returns a string representation of the genome.
func (g *Genome) String() string {
	parts := make([]string, 0, g.Len())
	for _, c := range g.Classifiers {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("Genome[%s]", strings.Join(parts, ", "))
}
