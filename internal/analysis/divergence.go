package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

var ErrMismatchedRuns = errors.New("analysis: runs have different bodies")

// Builder creates a simulator whose initial state is offset by perturbation.
// Builder(0) is the reference run.
type Builder func(perturbation float64) (*sim.Simulator, error)

// Divergence estimates the largest Lyapunov exponent of a simulation by
// trajectory separation. The perturbed run is pulled back to the initial
// separation after every tick and the log growth is averaged over time.
// A positive value means nearby arenas drift apart exponentially.
func Divergence(build Builder, perturbation float64, ticks int) (float64, error) {
	ref, err := build(0)
	if err != nil {
		return 0, err
	}
	pert, err := build(perturbation)
	if err != nil {
		return 0, err
	}
	a, b := ref.Bodies(), pert.Bodies()
	if len(a) != len(b) {
		return 0, ErrMismatchedRuns
	}

	d0 := separation(a, b)
	if d0 == 0 || ticks <= 0 {
		return 0, nil
	}

	sumLog := 0.0
	for i := 0; i < ticks; i++ {
		ref.Step(nil)
		pert.Step(nil)

		sep := separation(a, b)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)
		renormalize(a, b, d0/sep)
	}

	return sumLog / (float64(ticks) * ref.Params().Dt()), nil
}

// separation is the phase-space distance over every body's position and velocity.
func separation(a, b []*physics.Body) float64 {
	sum := 0.0
	for i := range a {
		dp := b[i].Position.Sub(a[i].Position)
		dv := b[i].Velocity.Sub(a[i].Velocity)
		sum += dp.Dot(dp) + dv.Dot(dv)
	}
	return math.Sqrt(sum)
}

func renormalize(a, b []*physics.Body, scale float64) {
	for i := range a {
		b[i].Position = a[i].Position.Add(b[i].Position.Sub(a[i].Position).Scale(scale))
		b[i].Velocity = a[i].Velocity.Add(b[i].Velocity.Sub(a[i].Velocity).Scale(scale))
	}
}
