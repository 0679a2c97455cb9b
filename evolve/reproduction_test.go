package evolve

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReproduction(seed int64, mutate func(*EvolutionConfig)) *Reproduction {
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg.Evolution)
	}
	return NewReproduction(&cfg.Evolution, &cfg.Genome, rand.New(rand.NewSource(seed)))
}

func TestMutateWithZeroRateLeavesGenomeUnchanged(t *testing.T) {
	r := newTestReproduction(10, func(c *EvolutionConfig) { c.MutationRate = 0 })
	g := NewRandomGenome(3, 7, r.Rand)
	before := g.Clone()

	for i := 0; i < 20; i++ {
		r.Mutate(g)
	}
	assert.True(t, before.Equal(g))
}

func TestMutateStaysWithinPower(t *testing.T) {
	r := newTestReproduction(11, func(c *EvolutionConfig) { c.MutationRate = 1 })
	g := NewRandomGenome(3, 7, r.Rand)
	before := g.Clone()

	r.Mutate(g)
	for i, c := range g.Classifiers {
		b := before.Classifiers[i]
		assert.LessOrEqual(t, math.Abs(c.Bias-b.Bias), r.Genome.BiasMutatePower+1e-12)
		for w := range c.Weights {
			assert.LessOrEqual(t, math.Abs(c.Weights[w]-b.Weights[w]), r.Genome.WeightMutatePower+1e-12)
		}
	}
	assert.False(t, before.Equal(g))

	r.Mutate(nil)
}

func TestCrossoverWithAlphaEndpoints(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	a := NewRandomGenome(3, 7, rng)
	b := NewRandomGenome(3, 7, rng)

	assert.True(t, CrossoverWithAlpha(a, b, 1).Equal(a))
	assert.True(t, CrossoverWithAlpha(a, b, 0).Equal(b))

	mid := CrossoverWithAlpha(a, b, 0.5)
	for i, c := range mid.Classifiers {
		assert.InDelta(t, (a.Classifiers[i].Bias+b.Classifiers[i].Bias)/2, c.Bias, 1e-12)
		for w := range c.Weights {
			assert.InDelta(t, (a.Classifiers[i].Weights[w]+b.Classifiers[i].Weights[w])/2, c.Weights[w], 1e-12)
		}
	}

	child := CrossoverWithAlpha(a, b, 1)
	child.Classifiers[0].Weights[0] += 1
	assert.NotEqual(t, child.Classifiers[0].Weights[0], a.Classifiers[0].Weights[0])
}

func TestCrossoverSharesAlphaAcrossClassifiers(t *testing.T) {
	r := newTestReproduction(13, nil)
	zeros := NewGenome(
		NewLinearClassifierWith([]float64{0, 0}, 0),
		NewLinearClassifierWith([]float64{0, 0}, 0),
	)
	ones := NewGenome(
		NewLinearClassifierWith([]float64{1, 1}, 1),
		NewLinearClassifierWith([]float64{1, 1}, 1),
	)

	// child = alpha*zeros + (1-alpha)*ones, so every gene equals 1-alpha
	child := r.Crossover(zeros, ones)
	want := child.Classifiers[0].Bias
	for _, c := range child.Classifiers {
		assert.Equal(t, want, c.Bias)
		for _, w := range c.Weights {
			assert.Equal(t, want, w)
		}
	}
}

func TestCrossoverFallsBackToCloneOfFirstParent(t *testing.T) {
	r := newTestReproduction(14, nil)
	a := NewRandomGenome(3, 7, r.Rand)

	for _, b := range []*Genome{NewRandomGenome(2, 7, r.Rand), NewRandomGenome(3, 4, r.Rand), {}} {
		child := r.Crossover(a, b)
		assert.True(t, child.Equal(a))
		assert.NotSame(t, a.Classifiers[0], child.Classifiers[0])
	}
}

func TestTournamentSelect(t *testing.T) {
	r := newTestReproduction(15, nil)
	assert.Nil(t, r.TournamentSelect(nil))

	single := entriesWithFitness(r.Rand, 4)
	picked := r.TournamentSelect(single)
	assert.True(t, picked.Equal(single[0].Genome))
	assert.NotSame(t, single[0].Genome, picked)

	ranked := RankByFitness(entriesWithFitness(r.Rand, 3, 5, 1))
	wins := 0
	for i := 0; i < 1000; i++ {
		if r.TournamentSelect(ranked).Equal(ranked[0].Genome) {
			wins++
		}
	}
	// three draws with replacement miss the best entry with probability (2/3)^3
	assert.Greater(t, wins, 600)
	assert.Less(t, wins, 800)
}

func TestTournamentSizeOneIsUniform(t *testing.T) {
	r := newTestReproduction(16, func(c *EvolutionConfig) { c.TournamentSize = 1 })
	ranked := RankByFitness(entriesWithFitness(r.Rand, 3, 5, 1))

	worst := 0
	for i := 0; i < 900; i++ {
		if r.TournamentSelect(ranked).Equal(ranked[2].Genome) {
			worst++
		}
	}
	assert.Greater(t, worst, 200)
}

func TestReproduce(t *testing.T) {
	r := newTestReproduction(17, func(c *EvolutionConfig) {
		c.PopulationSize = 8
		c.ElitismCount = 2
	})
	ranked := RankByFitness(entriesWithFitness(r.Rand, 1, 9, 4, 7, 2))

	next := r.Reproduce(ranked, 8)
	require.Len(t, next, 8)
	assert.True(t, next[0].Equal(ranked[0].Genome))
	assert.True(t, next[1].Equal(ranked[1].Genome))
	assert.NotSame(t, ranked[0].Genome, next[0])

	assert.Equal(t, 2, r.Last.Elites)
	assert.Equal(t, 6, r.Last.Crossovers+r.Last.Clones)
	for _, g := range next {
		require.NoError(t, g.Validate())
		assert.Equal(t, 3, g.Len())
	}

	assert.Nil(t, r.Reproduce(nil, 8))
}

func TestReproduceElitismLargerThanRanked(t *testing.T) {
	r := newTestReproduction(18, func(c *EvolutionConfig) { c.ElitismCount = 5 })
	ranked := entriesWithFitness(r.Rand, 3, 2)

	next := r.Reproduce(ranked, 4)
	require.Len(t, next, 4)
	assert.Equal(t, 2, r.Last.Elites)
}
