package evolve

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// EngineSaveData is a helper struct to hold only the parts of an Engine needed to
// resume a run. The Config is not saved; it is reloaded from the original file.
// The random source is not saved either, so a resumed run diverges from an
// uninterrupted one with the same seed.
type EngineSaveData struct {
	RunID      string
	Generation int
	Mode       RunMode
	Best       BestRecord
	Genomes    []*Genome // the population awaiting evaluation
}

// SaveCheckpoint saves the engine state and the genomes of pop to a gzip-compressed
// gob file. It is meant to be called at a generation boundary, with the population
// NextGeneration just returned.
func (e *Engine) SaveCheckpoint(filePath string, pop *Population) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)

	saveData := EngineSaveData{
		RunID:      e.RunID,
		Generation: e.Generation,
		Mode:       e.Mode,
		Best:       e.Best,
		Genomes:    pop.Genomes(),
	}

	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("failed to encode engine data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}

	e.Logger.Info("checkpoint saved", "path", filePath, "generation", e.Generation)
	return nil
}

// LoadCheckpoint restores an engine and its pending population from a checkpoint
// file written by SaveCheckpoint. config must be the configuration of the original run.
func LoadCheckpoint(checkpointPath string, config *Config) (*Engine, *Population, error) {
	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	saveData := EngineSaveData{}
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, nil, fmt.Errorf("failed to decode engine data from checkpoint: %w", err)
	}

	e, err := NewEngine(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-initialize engine from config: %w", err)
	}
	e.RunID = saveData.RunID
	e.Generation = saveData.Generation
	e.Mode = saveData.Mode
	e.Best = saveData.Best
	if e.Best.Genome == nil && e.Mode == ModeBestLoaded {
		return nil, nil, fmt.Errorf("checkpoint '%s' replays a best genome it does not contain", checkpointPath)
	}

	pop := e.issue(saveData.Genomes)
	e.Logger.Info("checkpoint loaded", "path", checkpointPath, "generation", e.Generation)
	return e, pop, nil
}
