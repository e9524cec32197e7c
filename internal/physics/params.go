package physics

import (
	"fmt"
	"math"
	"time"
)

// Params bundles the constants shared by the simulation and every body. It is
// built once and never mutated while a simulation runs.
type Params struct {
	Width      float64
	Height     float64
	Tick       time.Duration
	Gravity    float64
	AirDensity float64
	MassScale  float64
	Damping    Damping
	Walls      WallModel

	// ContactSuppressesGravity turns gravity off for a body during the tick in
	// which it was separated from another body.
	ContactSuppressesGravity bool
}

func DefaultParams() *Params {
	return &Params{
		Width:                    1000,
		Height:                   800,
		Tick:                     20 * time.Millisecond,
		Gravity:                  9.81,
		AirDensity:               1.2,
		MassScale:                1.0,
		Damping:                  Drag{Coefficient: 0.5},
		Walls:                    Rebound{Restitution: 0.9},
		ContactSuppressesGravity: true,
	}
}

// Dt is the tick period in seconds.
func (p *Params) Dt() float64 { return p.Tick.Seconds() }

func (p *Params) Validate() error {
	if !(p.Width > 0) || !(p.Height > 0) || isNaNOrInf(p.Width) || isNaNOrInf(p.Height) {
		return fmt.Errorf("%w: got %gx%g", ErrInvalidArena, p.Width, p.Height)
	}
	if p.Tick <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTick, p.Tick)
	}
	if p.Gravity < 0 || isNaNOrInf(p.Gravity) {
		return fmt.Errorf("%w: gravity %g", ErrParameterBounds, p.Gravity)
	}
	if p.AirDensity < 0 || isNaNOrInf(p.AirDensity) {
		return fmt.Errorf("%w: air density %g", ErrParameterBounds, p.AirDensity)
	}
	if !(p.MassScale > 0) || isNaNOrInf(p.MassScale) {
		return fmt.Errorf("%w: mass scale %g", ErrParameterBounds, p.MassScale)
	}
	if p.Damping == nil || p.Walls == nil {
		return fmt.Errorf("%w: damping and wall models are required", ErrParameterBounds)
	}
	if err := p.Damping.Validate(); err != nil {
		return err
	}
	return p.Walls.Validate()
}

// Mass returns π·r²·MassScale.
func (p *Params) Mass(radius float64) float64 {
	return math.Pi * radius * radius * p.MassScale
}

// Floor is the y coordinate of the bottom edge.
func (p *Params) Floor() float64 { return -p.Height / 2 }

// Bounds returns the allowed range of centre positions for a body of the given radius.
func (p *Params) Bounds(radius float64) (min, max Vector2) {
	return Vec(-p.Width/2+radius, -p.Height/2+radius), Vec(p.Width/2-radius, p.Height/2-radius)
}

// Contains reports whether a body of the given radius centred at pos is inside the arena.
func (p *Params) Contains(pos Vector2, radius float64) bool {
	lo, hi := p.Bounds(radius)
	return pos.X >= lo.X && pos.X <= hi.X && pos.Y >= lo.Y && pos.Y <= hi.Y
}

func inUnit(name string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fmt.Errorf("%w: %s %g not in [0,1]", ErrParameterBounds, name, v)
	}
	return nil
}
