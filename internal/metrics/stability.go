package metrics

import "github.com/san-kum/bounce/internal/sim"

// Containment is the fraction of ticks in which every body was inside the
// arena. Anything below 1 means the wall stage let a body escape.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(info sim.StepInfo) {
	c.samples++
	for _, b := range info.Bodies {
		if !info.Params.Contains(b.Position, b.Radius()) {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// FloorContact is the fraction of body-ticks spent resting on the floor.
type FloorContact struct {
	name    string
	onFloor int
	samples int
}

func NewFloorContact() *FloorContact {
	return &FloorContact{name: "floor_contact"}
}

func (f *FloorContact) Name() string {
	return f.name
}

func (f *FloorContact) Observe(info sim.StepInfo) {
	for _, b := range info.Bodies {
		if b.OnFloor {
			f.onFloor++
		}
		f.samples++
	}
}

func (f *FloorContact) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return float64(f.onFloor) / float64(f.samples)
}

func (f *FloorContact) Reset() {
	f.onFloor = 0
	f.samples = 0
}
