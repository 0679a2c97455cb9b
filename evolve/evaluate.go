package evolve

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// EvaluateFunc runs one agent's episode with genome g and returns its terminal
// fitness and lap time (NoLapTime when no lap was completed). It owns g for the
// duration of the call.
type EvaluateFunc func(ctx context.Context, h Handle, g *Genome) (fitness, lapTime float64, err error)

// EvaluateAll runs fn for every slot of pop that has not reported yet, on at most
// concurrency goroutines (GOMAXPROCS when concurrency <= 0). Each goroutine reports
// only into its own slot. EvaluateAll returns once every evaluation has finished,
// so ranking can never overlap with evaluation. The first error cancels the
// remaining evaluations and is returned.
func EvaluateAll(ctx context.Context, pop *Population, concurrency int, fn EvaluateFunc) error {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(concurrency).
		WithCancelOnError().
		WithFirstError()

	for _, h := range pop.Handles() {
		if pop.Reported(h) {
			continue
		}
		p.Go(func(ctx context.Context) error {
			g, err := pop.Genome(h)
			if err != nil {
				return err
			}
			fitness, lapTime, err := fn(ctx, h, g)
			if err != nil {
				return fmt.Errorf("evaluate slot %d: %w", h, err)
			}
			return pop.Report(h, fitness, lapTime)
		})
	}
	return p.Wait()
}
