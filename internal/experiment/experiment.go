package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	simulator  *sim.Simulator
	source     input.Source
	randSource *rand.Rand
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:        cfg,
		registry:   NewRegistry(),
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Setup validates the config, populates the arena and builds the simulator.
// The input source is the configured script, or none.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	p, err := e.cfg.Params()
	if err != nil {
		return err
	}
	law, err := e.registry.GetLaw(e.cfg.Law)
	if err != nil {
		return err
	}
	bodies, err := Populate(e.cfg, p, e.randSource)
	if err != nil {
		return err
	}

	e.simulator, err = sim.New(p, law, bodies)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}

	sourceName := "none"
	if e.cfg.Input.Script != "" {
		sourceName = "script"
	}
	e.source, err = e.registry.GetSource(sourceName, e.cfg)
	return err
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.RunTicks(ctx, e.source, e.cfg.Ticks)
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Source() input.Source { return e.source }

// UseSource replaces the input source, e.g. to merge in a keyboard latch.
func (e *Experiment) UseSource(src input.Source) { e.source = src }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Factory returns an ensemble factory that rebuilds this experiment with the
// given seed. metrics is called once per run so runs never share state.
func Factory(cfg *config.Config, metrics func() []sim.Metric) sim.Factory {
	return func(seed int64) (*sim.Simulator, input.Source, error) {
		c := cfg.Clone()
		c.Seed = seed
		exp := New(c)
		var ms []sim.Metric
		if metrics != nil {
			ms = metrics()
		}
		if err := exp.Setup(ms); err != nil {
			return nil, nil, err
		}
		return exp.Simulator(), exp.Source(), nil
	}
}

// Populate creates the bodies a config describes: the explicit body list if
// present, otherwise Population.Count random bodies.
func Populate(cfg *config.Config, p *physics.Params, rng *rand.Rand) ([]*physics.Body, error) {
	if len(cfg.Bodies) > 0 {
		bodies := make([]*physics.Body, 0, len(cfg.Bodies))
		for _, spec := range cfg.Bodies {
			b, err := physics.NewBody(p, spec)
			if err != nil {
				return nil, err
			}
			bodies = append(bodies, b)
		}
		return bodies, nil
	}

	pop := cfg.Population
	bodies := make([]*physics.Body, 0, pop.Count)
	for i := 0; i < pop.Count; i++ {
		spec := physics.BodySpec{
			ID:       i,
			Radius:   draw(rng, pop.Radius, pop.Integral),
			Position: physics.Vec(draw(rng, pop.X, pop.Integral), draw(rng, pop.Y, pop.Integral)),
			Velocity: physics.Vec(draw(rng, pop.VX, pop.Integral), draw(rng, pop.VY, pop.Integral)),
			Gain:     draw(rng, pop.Gain, pop.Integral),
			Color:    pop.Colors[rng.Intn(len(pop.Colors))],
		}
		b, err := physics.NewBody(p, spec)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// draw samples r uniformly. Integral draws pick a whole number in
// [ceil(min), floor(max)].
func draw(rng *rand.Rand, r config.Range, integral bool) float64 {
	if !integral {
		return r.Min + rng.Float64()*(r.Max-r.Min)
	}
	lo, hi := math.Ceil(r.Min), math.Floor(r.Max)
	if hi < lo {
		return r.Min
	}
	return lo + float64(rng.Intn(int(hi-lo)+1))
}
