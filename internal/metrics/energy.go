package metrics

import (
	"math"

	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

// KineticEnergy is the mean total kinetic energy per tick.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(info sim.StepInfo) {
	for _, b := range info.Bodies {
		k.total += b.KineticEnergy()
	}
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.samples = 0
}

// EnergyDrift is the largest relative change in total mechanical energy
// against the first observed tick.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(info sim.StepInfo) {
	energy := physics.TotalEnergy(info.Bodies)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift is the largest change of total momentum relative to the
// first observed tick. When the initial momentum is zero the change is absolute.
type MomentumDrift struct {
	name     string
	initial  physics.Vector2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(info sim.StepInfo) {
	p := physics.TotalMomentum(info.Bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	drift := p.Sub(m.initial).Magnitude()
	if ref := m.initial.Magnitude(); ref > 0 {
		drift /= ref
	}
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = physics.Vector2{}
	m.maxDrift = 0
	m.samples = 0
}
