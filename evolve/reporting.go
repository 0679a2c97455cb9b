package evolve

import "time"

// GenerationReport summarizes one evaluated generation.
type GenerationReport struct {
	RunID          string            `json:"run_id"`
	Generation     int               `json:"generation"`
	PopulationSize int               `json:"population_size"`
	Fitness        FitnessSummary    `json:"fitness"`
	BestFitness    float64           `json:"best_fitness"` // all-time record
	BestLapTime    float64           `json:"best_lap_time"`
	Stagnation     int               `json:"stagnation"` // generations since the record improved
	Offspring      ReproductionStats `json:"offspring"`
	Duration       time.Duration     `json:"duration"`
}

// Reporter receives notifications about the progress of a run. Implementations
// must not block the evolution loop.
type Reporter interface {
	StartGeneration(runID string, generation int)
	EndGeneration(report GenerationReport)
	NewBest(runID string, record BestRecord)
}

// ReporterSet fans every notification out to its members in order.
type ReporterSet []Reporter

// Add appends a reporter to the set.
func (rs *ReporterSet) Add(r Reporter) {
	*rs = append(*rs, r)
}

// StartGeneration notifies every reporter that a generation was issued.
func (rs ReporterSet) StartGeneration(runID string, generation int) {
	for _, r := range rs {
		r.StartGeneration(runID, generation)
	}
}

// EndGeneration passes the report of an evaluated generation to every reporter.
func (rs ReporterSet) EndGeneration(report GenerationReport) {
	for _, r := range rs {
		r.EndGeneration(report)
	}
}

// NewBest notifies every reporter that the best record improved.
func (rs ReporterSet) NewBest(runID string, record BestRecord) {
	for _, r := range rs {
		r.NewBest(runID, record)
	}
}
