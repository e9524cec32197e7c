package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bounce/internal/config"
	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
)

// Registry maps configuration names to the pluggable parts of a simulation.
type Registry struct {
	laws    map[string]func() physics.ResponseLaw
	walls   map[string]func(restitution float64) physics.WallModel
	damping map[string]func(coef float64) physics.Damping
	sources map[string]func(cfg *config.Config) (input.Source, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		laws:    make(map[string]func() physics.ResponseLaw),
		walls:   make(map[string]func(float64) physics.WallModel),
		damping: make(map[string]func(float64) physics.Damping),
		sources: make(map[string]func(*config.Config) (input.Source, error)),
	}

	r.laws["elastic"] = func() physics.ResponseLaw { return physics.Elastic{} }
	r.laws["merge"] = func() physics.ResponseLaw { return physics.Merge{} }

	r.walls["rebound"] = func(e float64) physics.WallModel { return physics.Rebound{Restitution: e} }
	r.walls["impulse"] = func(float64) physics.WallModel { return physics.Impulse{} }

	r.damping["drag"] = func(c float64) physics.Damping { return physics.Drag{Coefficient: c} }
	r.damping["friction"] = func(c float64) physics.Damping { return physics.Friction{Coefficient: c} }
	r.damping["none"] = func(float64) physics.Damping { return physics.NoDamping{} }

	r.sources["none"] = func(*config.Config) (input.Source, error) { return input.NewNone(), nil }
	r.sources["script"] = func(cfg *config.Config) (input.Source, error) {
		if cfg.Input.Script == "" {
			return nil, fmt.Errorf("script source needs input.script")
		}
		return input.LoadScript(cfg.Input.Script)
	}
	r.sources["latch"] = func(cfg *config.Config) (input.Source, error) {
		if cfg.Input.Sticky {
			return input.NewStickyLatch(), nil
		}
		return input.NewLatch(), nil
	}

	return r
}

func (r *Registry) GetLaw(name string) (physics.ResponseLaw, error) {
	fn, ok := r.laws[name]
	if !ok {
		return nil, fmt.Errorf("%w: response law %q", physics.ErrUnknownModel, name)
	}
	return fn(), nil
}

func (r *Registry) GetWalls(name string, restitution float64) (physics.WallModel, error) {
	fn, ok := r.walls[name]
	if !ok {
		return nil, fmt.Errorf("%w: wall model %q", physics.ErrUnknownModel, name)
	}
	return fn(restitution), nil
}

func (r *Registry) GetDamping(name string, coef float64) (physics.Damping, error) {
	fn, ok := r.damping[name]
	if !ok {
		return nil, fmt.Errorf("%w: damping %q", physics.ErrUnknownModel, name)
	}
	return fn(coef), nil
}

func (r *Registry) GetSource(name string, cfg *config.Config) (input.Source, error) {
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown input source: %s", name)
	}
	return fn(cfg)
}

func (r *Registry) ListLaws() []string    { return keys(r.laws) }
func (r *Registry) ListWalls() []string   { return keys(r.walls) }
func (r *Registry) ListDamping() []string { return keys(r.damping) }
func (r *Registry) ListSources() []string { return keys(r.sources) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
