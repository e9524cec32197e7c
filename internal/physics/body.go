package physics

import (
	"fmt"

	"github.com/san-kum/bounce/internal/input"
)

// Kinematics is the mutable per-tick state of a body.
type Kinematics struct {
	Position Vector2
	Velocity Vector2

	// OnFloor is written by the containment stage and read by the force stage
	// of the following tick.
	OnFloor bool

	// Colliding is set by Resolve during the pair pass and consumed by the
	// next Advance.
	Colliding bool

	// UserInput is written by the input stage and read by the force stage of the same tick.
	UserInput bool
}

// BodySpec describes a body to create.
type BodySpec struct {
	ID       int
	Radius   float64
	Position Vector2
	Velocity Vector2
	Gain     float64
	Color    string
}

// Body is a circular rigid body. Radius and mass never change after creation.
type Body struct {
	Kinematics

	ID int
	// Color is presentation only; the physics never reads it.
	Color string

	radius float64
	mass   float64
	gain   float64
	params *Params
}

// NewBody validates spec against p and returns the body. The initial position
// is clamped into the arena.
func NewBody(p *Params, spec BodySpec) (*Body, error) {
	if !(spec.Radius > 0) || isNaNOrInf(spec.Radius) {
		return nil, fmt.Errorf("body %d: %w: got %g", spec.ID, ErrInvalidRadius, spec.Radius)
	}
	if !(spec.Gain > 0) || isNaNOrInf(spec.Gain) {
		return nil, fmt.Errorf("body %d: %w: got %g", spec.ID, ErrInvalidGain, spec.Gain)
	}
	if 2*spec.Radius > p.Width || 2*spec.Radius > p.Height {
		return nil, fmt.Errorf("body %d: %w: radius %g in %gx%g", spec.ID, ErrBodyTooLarge, spec.Radius, p.Width, p.Height)
	}
	if !spec.Position.IsFinite() || !spec.Velocity.IsFinite() {
		return nil, fmt.Errorf("body %d: %w: non-finite initial state", spec.ID, ErrParameterBounds)
	}

	lo, hi := p.Bounds(spec.Radius)
	pos := Vec(clamp(spec.Position.X, lo.X, hi.X), clamp(spec.Position.Y, lo.Y, hi.Y))

	return &Body{
		Kinematics: Kinematics{
			Position: pos,
			Velocity: spec.Velocity,
			OnFloor:  pos.Y <= lo.Y,
		},
		ID:     spec.ID,
		Color:  spec.Color,
		radius: spec.Radius,
		mass:   p.Mass(spec.Radius),
		gain:   spec.Gain,
		params: p,
	}, nil
}

func (b *Body) Radius() float64   { return b.radius }
func (b *Body) Mass() float64     { return b.mass }
func (b *Body) Gain() float64     { return b.gain }
func (b *Body) Params() *Params   { return b.params }
func (b *Body) Left() Vector2     { return Vec(b.Position.X-b.radius, b.Position.Y) }
func (b *Body) Right() Vector2    { return Vec(b.Position.X+b.radius, b.Position.Y) }
func (b *Body) Top() Vector2      { return Vec(b.Position.X, b.Position.Y+b.radius) }
func (b *Body) Bottom() Vector2   { return Vec(b.Position.X, b.Position.Y-b.radius) }
func (b *Body) Momentum() Vector2 { return b.Velocity.Scale(b.mass) }

// KineticEnergy returns ½·m·|v|².
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.mass * b.Velocity.Dot(b.Velocity)
}

// PotentialEnergy returns m·g·h with h measured from the floor.
func (b *Body) PotentialEnergy() float64 {
	return b.mass * b.params.Gravity * (b.Position.Y - b.params.Floor())
}

// Advance runs one tick of the per-body pipeline:
//
//  1. applyInput: impulses from sig; records UserInput
//  2. netForce: gravity, normal force and damping; needs UserInput from 1
//     and OnFloor from the previous tick's stage 5
//  3. integrateVelocity: v += F/m·dt
//  4. integratePosition: x += v
//  5. contain: clamp to the arena, apply the wall model, set OnFloor
//
// Colliding is consumed by stage 2 and cleared afterwards.
func (b *Body) Advance(sig input.Signals) {
	p := b.params
	k := applyInput(b.Kinematics, sig, b.gain)
	f := netForce(k, b.mass, p)
	k = integrateVelocity(k, f, b.mass, p.Dt())
	k = integratePosition(k)
	k = contain(k, b.radius, b.mass, f, p)
	k.Colliding = false
	b.Kinematics = k
}

// NetForce reports the force stage 2 would compute for the current state with no input.
func (b *Body) NetForce() Vector2 {
	k := b.Kinematics
	k.UserInput = false
	return netForce(k, b.mass, b.params)
}

func applyInput(k Kinematics, sig input.Signals, gain float64) Kinematics {
	k.UserInput = false
	if sig.Up {
		k.Velocity.Y += gain
		k.UserInput = true
	}
	// Down works with gravity, so it leaves gravity on.
	if sig.Down {
		k.Velocity.Y -= gain
	}
	if sig.Right {
		k.Velocity.X += gain
		k.UserInput = true
	}
	if sig.Left {
		k.Velocity.X -= gain
		k.UserInput = true
	}
	if sig.Stop {
		k.Velocity = Vector2{}
		k.UserInput = true
	}
	return k
}

func netForce(k Kinematics, mass float64, p *Params) Vector2 {
	f := p.Damping.Force(k.Velocity, mass, p)

	suppressed := k.UserInput || (p.ContactSuppressesGravity && k.Colliding)
	if !suppressed {
		gravity := mass * p.Gravity
		normal := 0.0
		if k.OnFloor {
			normal = gravity
		}
		f.Y += normal - gravity
	}
	return f
}

func integrateVelocity(k Kinematics, f Vector2, mass, dt float64) Kinematics {
	k.Velocity = k.Velocity.Add(f.Scale(dt / mass))
	return k
}

func integratePosition(k Kinematics) Kinematics {
	k.Position = k.Position.Add(k.Velocity)
	return k
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
