package evolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// RunMode selects which reproduction path the engine takes at a generation boundary.
type RunMode int

const (
	// ModeEvolving ranks each generation and breeds the next one.
	ModeEvolving RunMode = iota
	// ModeBestLoaded replays the loaded best genome on its own every episode.
	ModeBestLoaded
)

// String returns the mode name used in logs and checkpoints.
func (m RunMode) String() string {
	switch m {
	case ModeEvolving:
		return "evolving"
	case ModeBestLoaded:
		return "best_loaded"
	default:
		return fmt.Sprintf("RunMode(%d)", int(m))
	}
}

// Engine holds the state of one evolution run: the generation counter, the all-time
// best record and the reproduction operators. It is not safe for concurrent use;
// one control loop owns it.
type Engine struct {
	Config       *Config
	Reproduction *Reproduction
	Generation   int
	Best         BestRecord
	Mode         RunMode
	RunID        string
	Reporters    ReporterSet
	Logger       *slog.Logger

	genStart time.Time
}

// NewEngine creates an engine for config. The random source is seeded from
// config.Evolution.Seed, or from the clock when the seed is 0.
func NewEngine(config *Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	seed := config.Evolution.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	e := &Engine{
		Config:       config,
		Reproduction: NewReproduction(&config.Evolution, &config.Genome, rng),
		Generation:   1,
		Best:         NewBestRecord(),
		Mode:         ModeEvolving,
		RunID:        uuid.NewString(),
		Logger:       slog.Default(),
	}
	return e, nil
}

// InitialPopulation returns PopulationSize freshly randomized genomes for the
// current generation.
func (e *Engine) InitialPopulation() *Population {
	return e.issue(e.Reproduction.CreateNewPopulation(e.Config.Evolution.PopulationSize))
}

// NextGeneration closes an evaluated generation and returns the population to
// evaluate next. Every slot of pop must have reported a fitness.
//
// In ModeEvolving the entries are ranked, the best record updated and the next
// generation bred by Evolve. In ModeBestLoaded the best genome is replayed on its own
// and the generation counter does not move.
func (e *Engine) NextGeneration(pop *Population) (*Population, error) {
	if !pop.Complete() {
		return nil, fmt.Errorf("generation %d: %w", pop.Generation, ErrPopulationIncomplete)
	}
	if e.Mode == ModeBestLoaded {
		return e.replayPopulation(), nil
	}

	ranked := RankByFitness(pop.Entries())
	if len(ranked) > 0 {
		e.Logger.Info("generation evaluated",
			"run_id", e.RunID,
			"generation", e.Generation,
			"best_fitness", ranked[0].Fitness,
			"record", e.Best.Fitness)
	}

	evaluated := e.Generation
	genomes := e.Evolve(ranked)
	if len(ranked) > 0 {
		e.Reporters.EndGeneration(GenerationReport{
			RunID:          e.RunID,
			Generation:     evaluated,
			PopulationSize: len(ranked),
			Fitness:        SummarizeFitness(ranked),
			BestFitness:    e.Best.Fitness,
			BestLapTime:    e.Best.LapTime,
			Stagnation:     e.Best.Stagnation(evaluated),
			Offspring:      e.Reproduction.Last,
			Duration:       time.Since(e.genStart),
		})
	}
	return e.issue(genomes), nil
}

// RunGeneration evaluates every slot of pop with fn, using up to concurrency
// goroutines, and then advances to the next generation.
func (e *Engine) RunGeneration(ctx context.Context, pop *Population, concurrency int, fn EvaluateFunc) (*Population, error) {
	if err := EvaluateAll(ctx, pop, concurrency, fn); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", pop.Generation, err)
	}
	return e.NextGeneration(pop)
}

// Evolve computes the next generation's genomes from entries ranked by descending
// fitness and always returns exactly PopulationSize genomes.
//
// With no entries the population is reinitialized from scratch and the generation
// counter is left untouched. Otherwise the best record is updated, the counter
// advances by one, the top ElitismCount genomes are carried over and the remainder
// is bred by tournament selection, crossover and mutation.
func (e *Engine) Evolve(ranked []Entry) []*Genome {
	popSize := e.Config.Evolution.PopulationSize
	if len(ranked) == 0 {
		e.Logger.Warn("no ranked genomes, reinitializing population",
			"run_id", e.RunID,
			"generation", e.Generation,
			"error", ErrEmptyPopulation)
		return e.Reproduction.CreateNewPopulation(popSize)
	}

	e.UpdateBestRecord(ranked)
	e.Generation++
	return e.Reproduction.Reproduce(ranked, popSize)
}

// UpdateBestRecord replaces the best record with a copy of the top ranked entry if
// its fitness strictly exceeds the record. It returns true when the record changed.
func (e *Engine) UpdateBestRecord(ranked []Entry) bool {
	if len(ranked) == 0 {
		return false
	}
	if !e.Best.Improve(ranked[0], e.Generation) {
		return false
	}
	e.Logger.Info("new best genome found",
		"run_id", e.RunID,
		"generation", e.Generation,
		"fitness", e.Best.Fitness,
		"lap_time", e.Best.LapTime)
	e.Reporters.NewBest(e.RunID, e.Best.Clone())
	return true
}

// Restart resets the run: generation 1, zeroed fitness and lap time records,
// evolving mode and a fresh random population. The best genome itself is kept,
// so it can still be saved after a restart.
func (e *Engine) Restart() *Population {
	e.Generation = 1
	best := e.Best.Genome
	e.Best = NewBestRecord()
	e.Best.Genome = best
	e.Mode = ModeEvolving
	e.Logger.Info("run restarted", "run_id", e.RunID)
	return e.InitialPopulation()
}

// Resize changes the population size and reinitializes the population. The
// generation counter and best record are kept.
func (e *Engine) Resize(popSize int) (*Population, error) {
	previous := e.Config.Evolution.PopulationSize
	e.Config.Evolution.PopulationSize = popSize
	if err := e.Config.Validate(); err != nil {
		e.Config.Evolution.PopulationSize = previous
		return nil, fmt.Errorf("resize population to %d: %w", popSize, err)
	}
	e.Logger.Info("population resized", "run_id", e.RunID, "from", previous, "to", popSize)
	return e.InitialPopulation(), nil
}

// SaveBest persists the best genome under key. Failures are logged and returned;
// the engine state is never affected.
func (e *Engine) SaveBest(ctx context.Context, store GenomeStore, key string) error {
	if !e.Best.HasGenome() {
		e.Logger.Warn("best genome not saved", "key", key, "error", ErrNoBestGenome)
		return ErrNoBestGenome
	}
	if err := store.Save(ctx, key, e.Best.Genome); err != nil {
		e.Logger.Warn("best genome not saved", "key", key, "error", err)
		return err
	}
	e.Logger.Info("best genome saved", "key", key, "fitness", e.Best.Fitness)
	return nil
}

// LoadBest loads the genome saved under key, switches to ModeBestLoaded and
// returns a population holding only that genome. When nothing is saved under key,
// or the load fails, a warning is logged, the error returned and the engine state
// is left unchanged.
func (e *Engine) LoadBest(ctx context.Context, store GenomeStore, key string) (*Population, error) {
	g, err := store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrGenomeNotFound) {
			e.Logger.Warn("no best genome saved yet", "key", key)
		} else {
			e.Logger.Warn("best genome not loaded", "key", key, "error", err)
		}
		return nil, err
	}
	if err := g.Validate(); err != nil {
		e.Logger.Warn("best genome not loaded", "key", key, "error", err)
		return nil, err
	}
	gc := e.Config.Genome
	if g.Len() != gc.NumClassifiers || g.FeatureLen() != gc.NumFeatures {
		err := fmt.Errorf("genome %q is %dx%d, run expects %dx%d: %w",
			key, g.Len(), g.FeatureLen(), gc.NumClassifiers, gc.NumFeatures, ErrLengthMismatch)
		e.Logger.Warn("best genome not loaded", "key", key, "error", err)
		return nil, err
	}

	e.Best.Genome = g
	e.Mode = ModeBestLoaded
	e.Logger.Info("best genome loaded", "key", key, "classifiers", g.Len())
	return e.replayPopulation(), nil
}

// replayPopulation holds a single copy of the best genome.
func (e *Engine) replayPopulation() *Population {
	return e.issue([]*Genome{e.Best.Genome.Clone()})
}

// issue wraps genomes in a population for the current generation.
func (e *Engine) issue(genomes []*Genome) *Population {
	e.genStart = time.Now()
	e.Reporters.StartGeneration(e.RunID, e.Generation)
	return NewPopulation(e.Generation, genomes)
}
