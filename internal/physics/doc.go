// Package physics implements circle dynamics inside a rectangular arena.
//
// The package provides the pieces of one simulation tick:
//
//   - [Vector2]: 2D value type
//   - [Params]: immutable arena and force constants shared by every body
//   - [Body]: a circular body with a staged per-tick update ([Body.Advance])
//   - [SortByLeftEdge] and [CandidatePairs]: sweep-prune broad phase on x
//   - [Overlaps], [SeparationVector] and [ResponseLaw]: narrow phase and response
//
// # Tick Ordering
//
// Collisions are resolved on this tick's pre-advance positions, then every
// body advances exactly once:
//
//	SortByLeftEdge(bodies)
//	for _, pr := range CandidatePairs(bodies) {
//	    a, b := bodies[pr.I], bodies[pr.J]
//	    if Overlaps(a, b) {
//	        Resolve(a, b, law)
//	    }
//	}
//	for _, b := range bodies {
//	    b.Advance(src.Poll(b.ID))
//	}
//
// # Separation
//
// [SeparationVector] decomposes the push along x and y using the contact angle
// asin(|dy|/|d|). With the epsilon guard this is close to, but not exactly, a
// push along the contact normal. When three or more bodies overlap at once the
// pairs are resolved one after another in broad-phase order.
package physics
