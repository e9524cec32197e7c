package metrics

import "github.com/san-kum/bounce/internal/sim"

// Collisions counts overlapping pairs resolved over a run.
type Collisions struct {
	name  string
	total int
}

func NewCollisions() *Collisions {
	return &Collisions{name: "collisions"}
}

func (c *Collisions) Name() string {
	return c.name
}

func (c *Collisions) Observe(info sim.StepInfo) {
	c.total += info.Contacts
}

func (c *Collisions) Value() float64 {
	return float64(c.total)
}

func (c *Collisions) Reset() {
	c.total = 0
}
