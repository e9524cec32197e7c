package physics

import (
	"fmt"
	"math"
)

// Damping produces the velocity-opposing force acting on a body.
type Damping interface {
	Name() string
	Force(v Vector2, mass float64, p *Params) Vector2
	Validate() error
}

// Drag is velocity-squared air drag, 0.5·ρ·Cd·m·v² on each axis, opposing the
// velocity component. The force on an axis never exceeds m·|v|/dt, so drag can
// stop a body within one tick but never reverse it.
type Drag struct {
	Coefficient float64
}

func (d Drag) Name() string { return "drag" }

func (d Drag) Force(v Vector2, mass float64, p *Params) Vector2 {
	k := 0.5 * p.AirDensity * d.Coefficient * mass
	return Vec(
		dragComponent(v.X, k, mass, p.Dt()),
		dragComponent(v.Y, k, mass, p.Dt()),
	)
}

func dragComponent(v, k, mass, dt float64) float64 {
	f := math.Min(k*v*v, mass*math.Abs(v)/dt)
	return -math.Copysign(f, v)
}

func (d Drag) Validate() error { return inUnit("drag coefficient", d.Coefficient) }

// Friction scales velocity by Coefficient every tick. It is expressed as the
// force -m·(1-c)·v/dt so it integrates through the same path as every other force.
type Friction struct {
	Coefficient float64
}

func (f Friction) Name() string { return "friction" }

func (f Friction) Force(v Vector2, mass float64, p *Params) Vector2 {
	return v.Scale(-mass * (1 - f.Coefficient) / p.Dt())
}

func (f Friction) Validate() error { return inUnit("friction coefficient", f.Coefficient) }

type NoDamping struct{}

func (NoDamping) Name() string { return "none" }

func (NoDamping) Force(v Vector2, mass float64, p *Params) Vector2 { return Vector2{} }

func (NoDamping) Validate() error { return nil }

// DampingByName builds a damping model from its configuration name.
func DampingByName(name string, coefficient float64) (Damping, error) {
	switch name {
	case "drag", "":
		return Drag{Coefficient: coefficient}, nil
	case "friction":
		return Friction{Coefficient: coefficient}, nil
	case "none":
		return NoDamping{}, nil
	}
	return nil, fmt.Errorf("%w: damping %q", ErrUnknownModel, name)
}
