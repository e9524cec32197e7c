package physics

import (
	"fmt"
	"math"
)

// WallModel chooses the velocity a body leaves a wall with. The same model is
// applied to all four walls. Inward is +1 for the left and bottom walls and -1
// for the right and top walls; the returned component must have that sign or be zero.
type WallModel interface {
	Name() string
	Bounce(v float64, inward float64, w WallHit) float64
	Validate() error
}

// WallHit carries what a wall model may need about the body hitting it.
type WallHit struct {
	Axis  int // 0 for x, 1 for y
	Mass  float64
	Force Vector2 // net force integrated this tick
}

// Rebound reflects the velocity component and scales it by Restitution.
type Rebound struct {
	Restitution float64
}

func (r Rebound) Name() string { return "rebound" }

func (r Rebound) Bounce(v, inward float64, w WallHit) float64 {
	return inward * math.Abs(v) * r.Restitution
}

func (r Rebound) Validate() error { return inUnit("restitution", r.Restitution) }

// Impulse replaces the velocity with the impulse velocity over a nominal unit
// time: along x the momentum m·v, along y the net force. Dividing by mass
// leaves |vx| and |Fy/m| respectively, which dissipates energy at the floor
// because the normal force has already cancelled gravity there.
type Impulse struct{}

func (Impulse) Name() string { return "impulse" }

func (Impulse) Bounce(v, inward float64, w WallHit) float64 {
	const unitTime = 1.0
	if w.Axis == 0 {
		return inward * math.Abs(w.Mass*v*unitTime) / w.Mass
	}
	return inward * math.Abs(w.Force.Y*unitTime) / w.Mass
}

func (Impulse) Validate() error { return nil }

// WallModelByName builds a wall model from its configuration name.
func WallModelByName(name string, restitution float64) (WallModel, error) {
	switch name {
	case "rebound", "":
		return Rebound{Restitution: restitution}, nil
	case "impulse":
		return Impulse{}, nil
	}
	return nil, fmt.Errorf("%w: wall model %q", ErrUnknownModel, name)
}

// contain clamps each axis independently into the arena and applies the wall
// model to any axis that was clamped. OnFloor is set iff the body rests on the
// bottom edge afterwards.
func contain(k Kinematics, radius, mass float64, force Vector2, p *Params) Kinematics {
	lo, hi := p.Bounds(radius)

	if k.Position.X <= lo.X {
		k.Position.X = lo.X
		k.Velocity.X = p.Walls.Bounce(k.Velocity.X, 1, WallHit{Axis: 0, Mass: mass, Force: force})
	} else if k.Position.X >= hi.X {
		k.Position.X = hi.X
		k.Velocity.X = p.Walls.Bounce(k.Velocity.X, -1, WallHit{Axis: 0, Mass: mass, Force: force})
	}

	if k.Position.Y <= lo.Y {
		k.Position.Y = lo.Y
		k.Velocity.Y = p.Walls.Bounce(k.Velocity.Y, 1, WallHit{Axis: 1, Mass: mass, Force: force})
	} else if k.Position.Y >= hi.Y {
		k.Position.Y = hi.Y
		k.Velocity.Y = p.Walls.Bounce(k.Velocity.Y, -1, WallHit{Axis: 1, Mass: mass, Force: force})
	}

	k.OnFloor = k.Position.Y <= lo.Y
	return k
}
