package evolve

import (
	"fmt"
	"math"
	"sort"
)

// Handle addresses one genome slot of a Population. The simulation layer maps
// handles to its live agents; the engine never sees the agents themselves.
type Handle int

// Entry pairs a genome with the fitness its agent reported. LapTime is telemetry
// only and never affects ranking.
type Entry struct {
	Genome  *Genome
	Fitness float64
	LapTime float64
}

// slot is one arena cell: the live genome bound to an agent plus its result.
type slot struct {
	genome   *Genome
	fitness  float64
	lapTime  float64
	reported bool
}

// Population is the arena of genome slots evaluated during one generation.
//
// Report may be called from several goroutines as long as each uses a distinct
// handle; every other method must only be called once evaluation has joined.
type Population struct {
	Generation int
	slots      []slot
}

// NewPopulation creates a population that takes ownership of the given genomes,
// one slot per genome, in order.
func NewPopulation(generation int, genomes []*Genome) *Population {
	p := &Population{
		Generation: generation,
		slots:      make([]slot, len(genomes)),
	}
	for i, g := range genomes {
		p.slots[i] = slot{genome: g, lapTime: NoLapTime}
	}
	return p
}

// Len returns the number of slots.
func (p *Population) Len() int {
	return len(p.slots)
}

// Handles returns every slot handle in order.
func (p *Population) Handles() []Handle {
	handles := make([]Handle, len(p.slots))
	for i := range p.slots {
		handles[i] = Handle(i)
	}
	return handles
}

// Genome returns the live genome of a slot, to be bound to the agent that evaluates it.
func (p *Population) Genome(h Handle) (*Genome, error) {
	s, err := p.slot(h)
	if err != nil {
		return nil, err
	}
	return s.genome, nil
}

// Report records the terminal fitness of a slot's agent. lapTime is NoLapTime
// when the agent did not complete a lap. Reporting twice overwrites the result.
// A NaN or infinite fitness is rejected and leaves the slot unreported.
func (p *Population) Report(h Handle, fitness, lapTime float64) error {
	s, err := p.slot(h)
	if err != nil {
		return err
	}
	if math.IsNaN(fitness) || math.IsInf(fitness, 0) {
		return fmt.Errorf("slot %d reported fitness %v: %w", h, fitness, ErrInvalidFitness)
	}
	s.fitness = fitness
	s.lapTime = lapTime
	s.reported = true
	return nil
}

// Reported reports whether the slot's agent has finished its episode.
func (p *Population) Reported(h Handle) bool {
	s, err := p.slot(h)
	return err == nil && s.reported
}

// Complete reports whether every slot has a fitness. An empty population is complete.
func (p *Population) Complete() bool {
	for i := range p.slots {
		if !p.slots[i].reported {
			return false
		}
	}
	return true
}

// Entries returns a deep-copied entry for every reported slot, in handle order.
func (p *Population) Entries() []Entry {
	entries := make([]Entry, 0, len(p.slots))
	for _, s := range p.slots {
		if !s.reported || s.genome == nil {
			continue
		}
		entries = append(entries, Entry{
			Genome:  s.genome.Clone(),
			Fitness: s.fitness,
			LapTime: s.lapTime,
		})
	}
	return entries
}

// Genomes returns a deep copy of every slot genome, in handle order.
func (p *Population) Genomes() []*Genome {
	genomes := make([]*Genome, len(p.slots))
	for i, s := range p.slots {
		genomes[i] = s.genome.Clone()
	}
	return genomes
}

// Best returns the handle of the slot with the highest reported fitness so far,
// or false when nothing has been reported.
func (p *Population) Best() (Handle, float64, bool) {
	best, bestFitness, found := Handle(0), 0.0, false
	for i, s := range p.slots {
		if s.reported && (!found || s.fitness > bestFitness) {
			best, bestFitness, found = Handle(i), s.fitness, true
		}
	}
	return best, bestFitness, found
}

func (p *Population) slot(h Handle) (*slot, error) {
	if h < 0 || int(h) >= len(p.slots) {
		return nil, fmt.Errorf("handle %d of %d slots: %w", h, len(p.slots), ErrUnknownHandle)
	}
	return &p.slots[h], nil
}

// RankByFitness returns the entries sorted by descending fitness. The sort is stable,
// so equal-fitness entries keep their original relative order. NaN fitness ranks
// last. The input is untouched.
func RankByFitness(entries []Entry) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Fitness, ranked[j].Fitness
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a > b
	})
	return ranked
}
