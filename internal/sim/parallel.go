package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/bounce/internal/input"
)

// Factory builds an independent simulator and its input source for one seed.
type Factory func(seed int64) (*Simulator, input.Source, error)

// Ensemble runs seeded simulations concurrently. Each run gets its own
// simulator, so runs share no body state.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

// Run returns results in seed order. The first error aborts the result set.
func (e *Ensemble) Run(ctx context.Context, ticks int) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, ErrInvalidEnsemble
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			s, src, err := e.factory(seed)
			if err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", seed, err)
				return
			}
			results[idx], errs[idx] = s.RunTicks(ctx, src, ticks)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Mean averages a named metric over results.
func Mean(results []*Result, metric string) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		sum += r.Metrics[metric]
	}
	return sum / float64(len(results))
}
