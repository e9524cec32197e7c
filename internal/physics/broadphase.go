package physics

import "sort"

// Pair indexes two bodies in a sorted slice, I < J.
type Pair struct {
	I, J int
}

// SortByLeftEdge orders bodies by x - radius, ascending. The sort is stable so
// bodies with equal left edges keep their previous relative order.
func SortByLeftEdge(bodies []*Body) {
	sort.SliceStable(bodies, func(i, j int) bool {
		return bodies[i].Left().X < bodies[j].Left().X
	})
}

// Sweep calls visit for every pair whose x extents may overlap. bodies must be
// sorted by left edge. For each i the scan over j stops at the first body whose
// left edge lies right of body i's right edge. Extents are read when each pair
// is reached, so visit may move bodies.
func Sweep(bodies []*Body, visit func(i, j int)) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if bodies[j].Left().X > bodies[i].Right().X {
				break
			}
			visit(i, j)
		}
	}
}

// CandidatePairs collects the pairs Sweep would visit.
func CandidatePairs(bodies []*Body) []Pair {
	pairs := make([]Pair, 0, len(bodies))
	Sweep(bodies, func(i, j int) {
		pairs = append(pairs, Pair{I: i, J: j})
	})
	return pairs
}
