package physics

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestSweepPrunesDisjointExtents(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	// x extents [0,10], [20,30], [5,15]
	bodies := []*Body{
		newTestBody(t, p, 0, 5, Vec(5, 0), Vector2{}),
		newTestBody(t, p, 1, 5, Vec(25, 0), Vector2{}),
		newTestBody(t, p, 2, 5, Vec(10, 0), Vector2{}),
	}

	SortByLeftEdge(bodies)
	g.Expect([]int{bodies[0].ID, bodies[1].ID, bodies[2].ID}).To(Equal([]int{0, 2, 1}))

	pairs := CandidatePairs(bodies)
	g.Expect(pairs).To(Equal([]Pair{{I: 0, J: 1}}))
	g.Expect(bodies[pairs[0].J].ID).To(Equal(2))
}

func TestSweepKeepsTouchingExtents(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	bodies := []*Body{
		newTestBody(t, p, 0, 5, Vec(0, 0), Vector2{}),
		newTestBody(t, p, 1, 5, Vec(10, 0), Vector2{}),
		newTestBody(t, p, 2, 5, Vec(20, 0), Vector2{}),
	}
	SortByLeftEdge(bodies)

	g.Expect(CandidatePairs(bodies)).To(Equal([]Pair{{I: 0, J: 1}, {I: 1, J: 2}}))
}

func TestSortIsStable(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	bodies := []*Body{
		newTestBody(t, p, 3, 5, Vec(0, 100), Vector2{}),
		newTestBody(t, p, 1, 5, Vec(0, -100), Vector2{}),
		newTestBody(t, p, 2, 5, Vec(0, 0), Vector2{}),
	}
	SortByLeftEdge(bodies)

	g.Expect([]int{bodies[0].ID, bodies[1].ID, bodies[2].ID}).To(Equal([]int{3, 1, 2}))
	g.Expect(CandidatePairs(bodies)).To(HaveLen(3))
}

func TestSweepFindsEveryOverlap(t *testing.T) {
	p := DefaultParams()
	bodies := make([]*Body, 0, 12)
	for i := 0; i < 12; i++ {
		x := float64(i*i%37) * 4
		y := float64(i%3) * 12
		bodies = append(bodies, newTestBody(t, p, i, 6+float64(i%4), Vec(x, y), Vector2{}))
	}
	SortByLeftEdge(bodies)

	found := make(map[Pair]bool)
	for _, pr := range CandidatePairs(bodies) {
		found[pr] = true
	}
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if Overlaps(bodies[i], bodies[j]) && !found[Pair{I: i, J: j}] {
				t.Errorf("overlapping pair (%d,%d) pruned", bodies[i].ID, bodies[j].ID)
			}
		}
	}
}
