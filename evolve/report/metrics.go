package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// MetricsReporter mirrors run progress into Prometheus collectors.
type MetricsReporter struct {
	generation      prometheus.Gauge
	generationsDone prometheus.Counter
	fitness         *prometheus.GaugeVec
	bestFitness     prometheus.Gauge
	bestLapTime     prometheus.Gauge
	stagnation      prometheus.Gauge
	newBest         prometheus.Counter
	offspring       *prometheus.CounterVec
	duration        prometheus.Histogram
}

var _ evolve.Reporter = (*MetricsReporter)(nil)

// NewMetricsReporter creates the collectors and registers them with reg.
func NewMetricsReporter(reg prometheus.Registerer) (*MetricsReporter, error) {
	m := &MetricsReporter{
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "carboy_generation",
			Help: "Generation currently being evaluated.",
		}),
		generationsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carboy_generations_total",
			Help: "Generations evaluated and bred.",
		}),
		fitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "carboy_generation_fitness",
			Help: "Fitness statistics of the last evaluated generation.",
		}, []string{"stat"}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "carboy_best_fitness",
			Help: "All-time best fitness of the run.",
		}),
		bestLapTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "carboy_best_lap_time_seconds",
			Help: "Lap time of the all-time best genome, -1 when it completed no lap.",
		}),
		stagnation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "carboy_stagnation_generations",
			Help: "Generations since the best record last improved.",
		}),
		newBest: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carboy_best_improvements_total",
			Help: "Times the best record improved.",
		}),
		offspring: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carboy_offspring_total",
			Help: "Genomes produced for the next generation, by origin.",
		}, []string{"origin"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carboy_generation_duration_seconds",
			Help:    "Wall time from issuing a generation to breeding its successor.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.bestLapTime.Set(evolve.NoLapTime)

	for _, c := range []prometheus.Collector{
		m.generation, m.generationsDone, m.fitness, m.bestFitness, m.bestLapTime,
		m.stagnation, m.newBest, m.offspring, m.duration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// StartGeneration sets the current generation gauge.
func (m *MetricsReporter) StartGeneration(_ string, generation int) {
	m.generation.Set(float64(generation))
}

// EndGeneration exports the report of an evaluated generation.
func (m *MetricsReporter) EndGeneration(rep evolve.GenerationReport) {
	m.generationsDone.Inc()
	m.fitness.WithLabelValues("max").Set(rep.Fitness.Max)
	m.fitness.WithLabelValues("min").Set(rep.Fitness.Min)
	m.fitness.WithLabelValues("mean").Set(rep.Fitness.Mean)
	m.fitness.WithLabelValues("median").Set(rep.Fitness.Median)
	m.fitness.WithLabelValues("stdev").Set(rep.Fitness.StdDev)
	m.bestFitness.Set(rep.BestFitness)
	m.bestLapTime.Set(rep.BestLapTime)
	m.stagnation.Set(float64(rep.Stagnation))
	m.offspring.WithLabelValues("elite").Add(float64(rep.Offspring.Elites))
	m.offspring.WithLabelValues("crossover").Add(float64(rep.Offspring.Crossovers))
	m.offspring.WithLabelValues("clone").Add(float64(rep.Offspring.Clones))
	m.duration.Observe(rep.Duration.Seconds())
}

// NewBest exports the improved record.
func (m *MetricsReporter) NewBest(_ string, record evolve.BestRecord) {
	m.newBest.Inc()
	m.bestFitness.Set(record.Fitness)
	m.bestLapTime.Set(record.LapTime)
}
