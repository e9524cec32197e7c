package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector2 is a 2D value. NaN and Inf propagate.
type Vector2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func Vec(x, y float64) Vector2 { return Vector2{X: x, Y: y} }

func fromMgl(v mgl64.Vec2) Vector2 { return Vector2{X: v[0], Y: v[1]} }

func (v Vector2) mgl() mgl64.Vec2 { return mgl64.Vec2{v.X, v.Y} }

func (v Vector2) Add(o Vector2) Vector2 { return fromMgl(v.mgl().Add(o.mgl())) }

func (v Vector2) Sub(o Vector2) Vector2 { return fromMgl(v.mgl().Sub(o.mgl())) }

func (v Vector2) Scale(f float64) Vector2 { return fromMgl(v.mgl().Mul(f)) }

func (v Vector2) Dot(o Vector2) float64 { return v.mgl().Dot(o.mgl()) }

// Magnitude returns sqrt(x²+y²).
func (v Vector2) Magnitude() float64 { return v.mgl().Len() }

// Normalize returns the unit vector, or the zero vector when v is zero.
func (v Vector2) Normalize() Vector2 {
	if v.X == 0 && v.Y == 0 {
		return Vector2{}
	}
	return fromMgl(v.mgl().Normalize())
}

func (v Vector2) IsFinite() bool {
	return !isNaNOrInf(v.X) && !isNaNOrInf(v.Y)
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y)
}
