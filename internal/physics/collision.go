package physics

import (
	"fmt"
	"math"
)

// SeparationEpsilon guards the contact angle against coincident centres.
const SeparationEpsilon = 1e-5

// ContactSlop is the penetration below which a non-approaching pair counts as
// resting contact rather than a collision.
const ContactSlop = 1e-9

// Overlaps reports whether the circles touch or intersect. Exactly touching
// counts as overlapping.
func Overlaps(a, b *Body) bool {
	d := a.Position.Sub(b.Position)
	r := a.radius + b.radius
	return d.Dot(d) <= r*r
}

// SeparationVector returns the displacement of a relative to b that removes
// their overlap. It points from b towards a. The push is decomposed on the
// contact angle θ = asin((|Δy|+ε)/(|d|+ε)), which is exact up to the ε guard.
// When the centres share an x or y coordinate the push on that axis goes
// negative for a. Non-overlapping pairs yield the zero vector.
func SeparationVector(a, b *Body) Vector2 {
	dx := a.Position.X - b.Position.X
	dy := a.Position.Y - b.Position.Y
	dist := Vec(math.Abs(dx), math.Abs(dy))

	overlap := (a.radius + b.radius) - dist.Magnitude()
	if overlap <= 0 {
		return Vector2{}
	}

	theta := math.Asin((dist.Y + SeparationEpsilon) / (dist.Magnitude() + SeparationEpsilon))

	sx := overlap * math.Cos(theta)
	sy := overlap * math.Sin(theta)
	if dx <= 0 {
		sx = -sx
	}
	if dy <= 0 {
		sy = -sy
	}
	return Vec(sx, sy)
}

// ResponseLaw computes post-collision velocities for a pair. Swapping the
// arguments swaps the results.
type ResponseLaw interface {
	Name() string
	Respond(a, b *Body) (va, vb Vector2)
}

// Elastic exchanges momentum along the contact normal.
type Elastic struct{}

func (Elastic) Name() string { return "elastic" }

func (Elastic) Respond(a, b *Body) (Vector2, Vector2) {
	d := a.Position.Sub(b.Position)
	dist := d.Magnitude()
	if dist < SeparationEpsilon {
		return a.Velocity, b.Velocity
	}
	n := d.Scale(1 / dist)
	rel := a.Velocity.Sub(b.Velocity).Dot(n)

	total := a.mass + b.mass
	ja := 2 * b.mass / total * rel
	jb := 2 * a.mass / total * rel

	return a.Velocity.Sub(n.Scale(ja)), b.Velocity.Add(n.Scale(jb))
}

// Merge moves both bodies to the mass-weighted average velocity.
type Merge struct{}

func (Merge) Name() string { return "merge" }

func (Merge) Respond(a, b *Body) (Vector2, Vector2) {
	total := a.mass + b.mass
	v := a.Velocity.Scale(a.mass).Add(b.Velocity.Scale(b.mass)).Scale(1 / total)
	return v, v
}

// LawByName builds a response law from its configuration name.
func LawByName(name string) (ResponseLaw, error) {
	switch name {
	case "elastic", "":
		return Elastic{}, nil
	case "merge":
		return Merge{}, nil
	}
	return nil, fmt.Errorf("%w: response law %q", ErrUnknownModel, name)
}

// Approaching reports whether the bodies move towards each other along the
// line joining their centres.
func Approaching(a, b *Body) bool {
	d := a.Position.Sub(b.Position)
	return a.Velocity.Sub(b.Velocity).Dot(d) < 0
}

// Resolve separates an overlapping pair, splitting the separation vector
// evenly between them, and applies law to their velocities if they are
// approaching. Both bodies are marked colliding only when the penetration
// exceeds ContactSlop or the pair is approaching; a pair left touching after a
// merge is resting contact and keeps its gravity. Resolve reports whether the pair
// collided.
func Resolve(a, b *Body, law ResponseLaw) bool {
	if !Overlaps(a, b) {
		return false
	}

	penetration := a.radius + b.radius - a.Position.Sub(b.Position).Magnitude()
	half := SeparationVector(a, b).Scale(0.5)
	a.Position = a.Position.Add(half)
	b.Position = b.Position.Sub(half)

	approaching := Approaching(a, b)
	if approaching {
		a.Velocity, b.Velocity = law.Respond(a, b)
	}
	if penetration <= ContactSlop && !approaching {
		return false
	}
	a.Colliding = true
	b.Colliding = true
	return true
}
