package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/experiment"
	"github.com/san-kum/bounce/internal/metrics"
	"github.com/san-kum/bounce/internal/sim"
)

var ErrNoCandidates = errors.New("optim: no parameter combination ran")

// GridSearch tries every combination of config override values and keeps the
// one with the lowest mean metric over an ensemble of seeds.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	runs       int
}

func NewGridSearch(params []string, ranges [][]float64, runs int) *GridSearch {
	if runs < 1 {
		runs = 1
	}
	return &GridSearch{paramNames: params, ranges: ranges, runs: runs}
}

// Point is one evaluated combination.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search evaluates every combination against base. Combinations that fail to
// build or run are reported in the returned points and skipped. maximize
// flips the objective.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	metricName string,
	maximize bool,
) (best Point, points []Point, err error) {
	if _, err := metrics.New(metricName); err != nil {
		return Point{}, nil, err
	}
	if len(g.paramNames) != len(g.ranges) {
		return Point{}, nil, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	bestVal := math.Inf(1)
	g.searchRecursive(ctx, 0, make(map[string]float64), func(current map[string]float64) {
		pt := g.evaluate(ctx, base, current, metricName)
		points = append(points, pt)
		if pt.Err != nil {
			return
		}
		v := pt.Value
		if maximize {
			v = -v
		}
		if v < bestVal {
			bestVal = v
			best = pt
		}
	})

	if ctx.Err() != nil {
		return best, points, ctx.Err()
	}
	if best.Params == nil {
		return best, points, ErrNoCandidates
	}
	return best, points, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, current map[string]float64, metricName string) Point {
	params := make(map[string]float64, len(current))
	cfg := base.Clone()
	for k, v := range current {
		params[k] = v
		if err := cfg.SetFloat(k, v); err != nil {
			return Point{Params: params, Err: err}
		}
	}
	if err := cfg.Validate(); err != nil {
		return Point{Params: params, Err: err}
	}

	factory := experiment.Factory(cfg, func() []sim.Metric {
		m, _ := metrics.New(metricName)
		return []sim.Metric{m}
	})
	results, err := sim.NewEnsemble(factory, g.runs, cfg.Seed).Run(ctx, cfg.Ticks)
	if err != nil {
		return Point{Params: params, Err: err}
	}
	return Point{Params: params, Value: sim.Mean(results, metricName)}
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64),
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		visit(current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, visit)
	}
}
