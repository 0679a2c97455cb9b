package evolve

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Evolution.Seed = 42
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	e.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return e
}

// recordingReporter keeps every notification it receives.
type recordingReporter struct {
	started []int
	ended   []GenerationReport
	bests   []BestRecord
}

func (r *recordingReporter) StartGeneration(_ string, generation int) {
	r.started = append(r.started, generation)
}
func (r *recordingReporter) EndGeneration(rep GenerationReport) { r.ended = append(r.ended, rep) }
func (r *recordingReporter) NewBest(_ string, rec BestRecord)   { r.bests = append(r.bests, rec) }

// reportAll gives every slot the fitness returned by fitness(h).
func reportAll(t *testing.T, pop *Population, fitness func(Handle) float64) {
	t.Helper()
	for _, h := range pop.Handles() {
		require.NoError(t, pop.Report(h, fitness(h), NoLapTime))
	}
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, 1, e.Generation)
	assert.Equal(t, ModeEvolving, e.Mode)
	assert.Equal(t, 0.0, e.Best.Fitness)
	assert.Equal(t, NoLapTime, e.Best.LapTime)
	assert.False(t, e.Best.HasGenome())
	assert.NotEmpty(t, e.RunID)

	pop := e.InitialPopulation()
	assert.Equal(t, 10, pop.Len())
	assert.Equal(t, 1, pop.Generation)

	cfg := DefaultConfig()
	cfg.Evolution.ElitismCount = 11
	_, err := NewEngine(cfg)
	require.Error(t, err)
}

func TestEvolveEmptyReinitializes(t *testing.T) {
	e := newTestEngine(t)

	next := e.Evolve(nil)
	assert.Len(t, next, 10)
	assert.Equal(t, 1, e.Generation)
	assert.False(t, e.Best.HasGenome())
	for _, g := range next {
		assert.Equal(t, 3, g.Len())
		assert.Equal(t, 7, g.FeatureLen())
	}
}

func TestEvolveAdvancesGeneration(t *testing.T) {
	e := newTestEngine(t)
	ranked := RankByFitness(entriesWithFitness(e.Reproduction.Rand, 4, 12, 8))

	next := e.Evolve(ranked)
	require.Len(t, next, 10)
	assert.Equal(t, 2, e.Generation)
	assert.True(t, next[0].Equal(ranked[0].Genome))

	assert.Equal(t, 12.0, e.Best.Fitness)
	assert.Equal(t, 1, e.Best.Generation)
	assert.True(t, e.Best.Genome.Equal(ranked[0].Genome))
	assert.NotSame(t, ranked[0].Genome, e.Best.Genome)
}

func TestBestRecordIsMonotonic(t *testing.T) {
	e := newTestEngine(t)
	rng := e.Reproduction.Rand

	first := RankByFitness(entriesWithFitness(rng, 5, 1))
	e.Evolve(first)
	require.Equal(t, 5.0, e.Best.Fitness)

	e.Evolve(RankByFitness(entriesWithFitness(rng, 3, 2)))
	assert.Equal(t, 5.0, e.Best.Fitness)
	assert.True(t, e.Best.Genome.Equal(first[0].Genome))

	// equal fitness does not replace the record
	e.Evolve(RankByFitness(entriesWithFitness(rng, 5)))
	assert.True(t, e.Best.Genome.Equal(first[0].Genome))
	assert.Equal(t, 1, e.Best.Generation)

	better := RankByFitness(entriesWithFitness(rng, 8))
	e.Evolve(better)
	assert.Equal(t, 8.0, e.Best.Fitness)
	assert.Equal(t, 4, e.Best.Generation)
	assert.Equal(t, 5, e.Generation)

	// later changes to the ranked genome do not leak into the record
	better[0].Genome.Classifiers[0].Bias += 10
	assert.False(t, e.Best.Genome.Equal(better[0].Genome))
}

func TestNextGeneration(t *testing.T) {
	e := newTestEngine(t)
	rec := &recordingReporter{}
	e.Reporters.Add(rec)

	pop := e.InitialPopulation()
	_, err := e.NextGeneration(pop)
	require.ErrorIs(t, err, ErrPopulationIncomplete)

	reportAll(t, pop, func(h Handle) float64 { return float64(h) })
	next, err := e.NextGeneration(pop)
	require.NoError(t, err)
	assert.Equal(t, 10, next.Len())
	assert.Equal(t, 2, next.Generation)
	assert.False(t, next.Complete())

	assert.Equal(t, []int{1, 2}, rec.started)
	require.Len(t, rec.ended, 1)
	rep := rec.ended[0]
	assert.Equal(t, 1, rep.Generation)
	assert.Equal(t, 10, rep.PopulationSize)
	assert.Equal(t, 9.0, rep.Fitness.Max)
	assert.Equal(t, 4.5, rep.Fitness.Mean)
	assert.Equal(t, 9.0, rep.BestFitness)
	assert.Equal(t, 0, rep.Stagnation)
	assert.Equal(t, 1, rep.Offspring.Elites)
	require.Len(t, rec.bests, 1)
	assert.Equal(t, 9.0, rec.bests[0].Fitness)

	best, err := pop.Genome(9)
	require.NoError(t, err)
	assert.True(t, e.Best.Genome.Equal(best))
}

func TestRunGeneration(t *testing.T) {
	e := newTestEngine(t)
	pop := e.InitialPopulation()

	fitness := func(_ context.Context, _ Handle, g *Genome) (float64, float64, error) {
		return g.Classifiers[0].Bias + 1, NoLapTime, nil
	}
	for i := 0; i < 5; i++ {
		next, err := e.RunGeneration(context.Background(), pop, 4, fitness)
		require.NoError(t, err)
		pop = next
	}
	assert.Equal(t, 6, e.Generation)
	assert.Equal(t, 10, pop.Len())
	assert.True(t, e.Best.HasGenome())
	assert.InDelta(t, e.Best.Genome.Classifiers[0].Bias+1, e.Best.Fitness, 1e-12)
}

func TestBestLoadedModeReplaysBestGenome(t *testing.T) {
	e := newTestEngine(t)
	ranked := RankByFitness(entriesWithFitness(e.Reproduction.Rand, 7))
	e.Evolve(ranked)
	e.Mode = ModeBestLoaded
	generation := e.Generation

	pop := e.replayPopulation()
	for i := 0; i < 3; i++ {
		reportAll(t, pop, func(Handle) float64 { return 1 })
		next, err := e.NextGeneration(pop)
		require.NoError(t, err)
		require.Equal(t, 1, next.Len())
		g, err := next.Genome(0)
		require.NoError(t, err)
		assert.True(t, g.Equal(ranked[0].Genome))
		assert.NotSame(t, e.Best.Genome, g)
		pop = next
	}
	assert.Equal(t, generation, e.Generation)
	assert.Equal(t, 7.0, e.Best.Fitness)
}

func TestRestart(t *testing.T) {
	e := newTestEngine(t)
	e.Evolve(RankByFitness(entriesWithFitness(e.Reproduction.Rand, 7, 3)))
	e.Mode = ModeBestLoaded
	best := e.Best.Genome
	require.NotNil(t, best)

	pop := e.Restart()
	assert.Equal(t, 1, e.Generation)
	assert.Equal(t, ModeEvolving, e.Mode)
	assert.Equal(t, 0.0, e.Best.Fitness)
	assert.Equal(t, NoLapTime, e.Best.LapTime)
	assert.Equal(t, 10, pop.Len())

	// the genome survives so it can still be saved
	require.True(t, e.Best.HasGenome())
	assert.Same(t, best, e.Best.Genome)

	// any positive fitness after the restart beats the reset record
	e.Evolve(RankByFitness(entriesWithFitness(e.Reproduction.Rand, 1)))
	assert.Equal(t, 1.0, e.Best.Fitness)
	assert.NotSame(t, best, e.Best.Genome)
}

func TestResize(t *testing.T) {
	e := newTestEngine(t)

	pop, err := e.Resize(25)
	require.NoError(t, err)
	assert.Equal(t, 25, pop.Len())
	assert.Len(t, e.Evolve(nil), 25)

	_, err = e.Resize(0)
	require.Error(t, err)
	assert.Equal(t, 25, e.Config.Evolution.PopulationSize)
}

func TestRunModeString(t *testing.T) {
	assert.Equal(t, "evolving", ModeEvolving.String())
	assert.Equal(t, "best_loaded", ModeBestLoaded.String())
}
