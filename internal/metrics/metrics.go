package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/bounce/internal/sim"
)

var constructors = map[string]func() sim.Metric{
	"kinetic_energy": func() sim.Metric { return NewKineticEnergy() },
	"energy_drift":   func() sim.Metric { return NewEnergyDrift() },
	"momentum_drift": func() sim.Metric { return NewMomentumDrift() },
	"collisions":     func() sim.Metric { return NewCollisions() },
	"floor_contact":  func() sim.Metric { return NewFloorContact() },
	"containment":    func() sim.Metric { return NewContainment() },
}

// Default returns a fresh instance of every metric.
func Default() []sim.Metric {
	names := List()
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, constructors[name]())
	}
	return out
}

func New(name string) (sim.Metric, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func List() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
