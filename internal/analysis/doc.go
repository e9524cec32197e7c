// Package analysis inspects recorded bounce trajectories.
//
// Tools work on a single body's track, as returned by storage.Store.Track, or
// on live simulators:
//
//   - [GeneratePhasePortrait]: any two of x, y, vx, vy plotted against each other
//   - [PowerSpectrum] and [DominantFrequency]: periodicity of a bounce
//   - [Impacts], [Apexes] and [Restitution]: floor and wall rebounds
//   - [Divergence]: largest Lyapunov exponent between two nearby arenas
//
// # Chaos Detection
//
// A positive divergence indicates that collisions amplify small differences:
//
//	lambda, err := analysis.Divergence(build, 1e-6, 500)
//	if lambda > 0 {
//	    // arena is chaotic
//	}
package analysis
