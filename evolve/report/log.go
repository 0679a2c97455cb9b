package report

import (
	"log/slog"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// LogReporter writes a structured log line for every run event.
type LogReporter struct {
	Logger *slog.Logger
}

var _ evolve.Reporter = (*LogReporter)(nil)

// NewLogReporter creates a reporter writing to logger, or slog.Default when nil.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger}
}

// StartGeneration logs the issued generation at debug level.
func (r *LogReporter) StartGeneration(runID string, generation int) {
	r.Logger.Debug("generation started", "run_id", runID, "generation", generation)
}

// EndGeneration logs the fitness summary and offspring counts.
func (r *LogReporter) EndGeneration(rep evolve.GenerationReport) {
	r.Logger.Info("generation finished",
		"run_id", rep.RunID,
		"generation", rep.Generation,
		"population", rep.PopulationSize,
		"max", rep.Fitness.Max,
		"mean", rep.Fitness.Mean,
		"median", rep.Fitness.Median,
		"stdev", rep.Fitness.StdDev,
		"record", rep.BestFitness,
		"stagnation", rep.Stagnation,
		"elites", rep.Offspring.Elites,
		"crossovers", rep.Offspring.Crossovers,
		"clones", rep.Offspring.Clones,
		"duration", rep.Duration)
}

// NewBest logs the improved record.
func (r *LogReporter) NewBest(runID string, record evolve.BestRecord) {
	r.Logger.Info("best record improved",
		"run_id", runID,
		"generation", record.Generation,
		"fitness", record.Fitness,
		"lap_time", record.LapTime)
}
