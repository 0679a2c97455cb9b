package evolve

import "errors"

// Errors returned by the evolution core. None of them is fatal to a run: callers
// log them and continue with unchanged state or a fallback policy.
var (
	// ErrLengthMismatch is returned when a feature vector does not match a classifier's
	// weight count, or when two genomes of different shape are combined.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrEmptyPopulation is reported when there are no ranked entries to evolve from.
	ErrEmptyPopulation = errors.New("empty population")

	// ErrGenomeNotFound is returned by a GenomeStore when no genome is saved under a key.
	ErrGenomeNotFound = errors.New("genome not found")

	// ErrStorageWrite wraps any failure to persist a genome.
	ErrStorageWrite = errors.New("genome storage write failed")

	// ErrVersionMismatch is returned when a stored genome document has an unknown schema version.
	ErrVersionMismatch = errors.New("genome document version mismatch")

	// ErrNoBestGenome is returned when saving a best record that has no genome yet.
	ErrNoBestGenome = errors.New("no best genome recorded")

	// ErrPopulationIncomplete is returned when a generation is advanced before every slot reported.
	ErrPopulationIncomplete = errors.New("population has unevaluated slots")

	// ErrInvalidFitness is returned when an agent reports a NaN or infinite fitness.
	ErrInvalidFitness = errors.New("fitness is not a finite number")

	// ErrUnknownHandle is returned for a handle that does not address a population slot.
	ErrUnknownHandle = errors.New("unknown population handle")
)
