package evolve

import (
	"math/rand"
)

// Reproduction handles the creation of new genomes, either from scratch or through
// tournament selection, arithmetic crossover and mutation.
type Reproduction struct {
	Config *EvolutionConfig
	Genome *GenomeConfig
	Rand   *rand.Rand

	// Last holds the operator counts of the most recent Reproduce call.
	Last ReproductionStats
}

// ReproductionStats counts how the genomes of one generation were produced.
type ReproductionStats struct {
	Elites     int `json:"elites"`
	Crossovers int `json:"crossovers"`
	Clones     int `json:"clones"`
}

// NewReproduction creates a new reproduction manager drawing from rng.
func NewReproduction(config *EvolutionConfig, genomeConfig *GenomeConfig, rng *rand.Rand) *Reproduction {
	return &Reproduction{
		Config: config,
		Genome: genomeConfig,
		Rand:   rng,
	}
}

// CreateNewPopulation creates popSize freshly randomized genomes.
func (r *Reproduction) CreateNewPopulation(popSize int) []*Genome {
	genomes := make([]*Genome, popSize)
	for i := range genomes {
		genomes[i] = NewRandomGenome(r.Genome.NumClassifiers, r.Genome.NumFeatures, r.Rand)
	}
	return genomes
}

// Reproduce builds the next generation from entries already ranked by descending
// fitness: the top ElitismCount genomes are carried over unchanged, and the rest
// are children of two tournament-selected parents. It returns exactly popSize genomes,
// or nil when ranked is empty.
func (r *Reproduction) Reproduce(ranked []Entry, popSize int) []*Genome {
	if len(ranked) == 0 {
		return nil
	}
	r.Last = ReproductionStats{}
	next := make([]*Genome, 0, popSize)

	// Transfer elites.
	for i := 0; i < r.Config.ElitismCount && i < len(ranked) && len(next) < popSize; i++ {
		next = append(next, ranked[i].Genome.Clone())
		r.Last.Elites++
	}

	// Produce offspring.
	for len(next) < popSize {
		parent1 := r.TournamentSelect(ranked)
		parent2 := r.TournamentSelect(ranked)

		var child *Genome
		if r.Rand.Float64() < r.Config.CrossoverRate && parent1.Compatible(parent2) {
			child = r.Crossover(parent1, parent2)
			r.Last.Crossovers++
		} else {
			child = parent1.Clone()
			r.Last.Clones++
		}
		r.Mutate(child)
		next = append(next, child)
	}
	return next
}

// TournamentSelect draws min(TournamentSize, len(ranked)) uniform indices with
// replacement and returns a copy of the fittest genome drawn. The first drawn
// candidate wins ties. It returns nil for an empty slice.
func (r *Reproduction) TournamentSelect(ranked []Entry) *Genome {
	if len(ranked) == 0 {
		return nil
	}
	rounds := max(1, min(r.Config.TournamentSize, len(ranked)))

	best := ranked[r.Rand.Intn(len(ranked))]
	for i := 1; i < rounds; i++ {
		candidate := ranked[r.Rand.Intn(len(ranked))]
		if candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best.Genome.Clone()
}

// Crossover produces a child by arithmetic crossover with one interpolation
// coefficient alpha, drawn uniformly from [0, 1] for the whole child. Parents that
// cannot be recombined yield a copy of parentA.
func (r *Reproduction) Crossover(parentA, parentB *Genome) *Genome {
	if !parentA.Compatible(parentB) {
		return parentA.Clone()
	}
	return CrossoverWithAlpha(parentA, parentB, r.Rand.Float64())
}

// CrossoverWithAlpha returns the elementwise convex combination alpha*A + (1-alpha)*B
// of every classifier's weights and bias. alpha = 1 reproduces parentA and alpha = 0
// reproduces parentB. Parents that cannot be recombined yield a copy of parentA.
func CrossoverWithAlpha(parentA, parentB *Genome, alpha float64) *Genome {
	if !parentA.Compatible(parentB) {
		return parentA.Clone()
	}
	child := &Genome{Classifiers: make([]*LinearClassifier, parentA.Len())}
	for i, a := range parentA.Classifiers {
		b := parentB.Classifiers[i]
		c := &LinearClassifier{
			Weights: make([]float64, len(a.Weights)),
			Bias:    interpolate(a.Bias, b.Bias, alpha),
		}
		for w := range c.Weights {
			c.Weights[w] = interpolate(a.Weights[w], b.Weights[w], alpha)
		}
		child.Classifiers[i] = c
	}
	return child
}

// interpolate is exact at the endpoints: alpha 1 yields a and alpha 0 yields b.
func interpolate(a, b, alpha float64) float64 {
	switch alpha {
	case 1:
		return a
	case 0:
		return b
	}
	return alpha*a + (1-alpha)*b
}

// Mutate perturbs g in place. Each classifier's bias moves by a uniform value in
// ±BiasMutatePower with probability MutationRate, and each weight independently by
// a uniform value in ±WeightMutatePower with the same probability. g must be a
// genome the caller owns exclusively.
func (r *Reproduction) Mutate(g *Genome) {
	if g == nil {
		return
	}
	rate := r.Config.MutationRate
	for _, c := range g.Classifiers {
		if r.Rand.Float64() < rate {
			c.Bias += uniform(r.Rand, -r.Genome.BiasMutatePower, r.Genome.BiasMutatePower)
		}
		for w := range c.Weights {
			if r.Rand.Float64() < rate {
				c.Weights[w] += uniform(r.Rand, -r.Genome.WeightMutatePower, r.Genome.WeightMutatePower)
			}
		}
	}
}
