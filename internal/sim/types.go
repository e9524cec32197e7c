package sim

import (
	"errors"
	"time"

	"github.com/san-kum/bounce/internal/physics"
)

var (
	// ErrStopped is returned by a Renderer to end Run without error.
	ErrStopped = errors.New("sim: renderer stopped")

	ErrNoLaw           = errors.New("sim: response law is required")
	ErrForeignBody     = errors.New("sim: body built with different params")
	ErrDuplicateBody   = errors.New("sim: duplicate body id")
	ErrInvalidTicks    = errors.New("sim: tick count must be positive")
	ErrNoParams        = errors.New("sim: params are required")
	ErrInvalidEnsemble = errors.New("sim: ensemble needs at least one run")
)

// Sprite is what a renderer needs to draw one body.
type Sprite struct {
	ID       int             `json:"id"`
	Position physics.Vector2 `json:"position"`
	Velocity physics.Vector2 `json:"velocity"`
	Radius   float64         `json:"radius"`
	Color    string          `json:"color,omitempty"`
}

// Frame is the state of every body after a tick, ordered by body ID.
type Frame struct {
	Tick    int      `json:"tick"`
	Sprites []Sprite `json:"sprites"`
}

// Renderer consumes one frame per tick. Returning ErrStopped ends Run cleanly.
type Renderer interface {
	Draw(f Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(f Frame) error

func (fn RendererFunc) Draw(f Frame) error { return fn(f) }

// StepInfo is handed to metrics and observers after every tick.
type StepInfo struct {
	Tick     int
	Contacts int
	Bodies   []*physics.Body
	Params   *physics.Params
}

type Metric interface {
	Name() string
	Observe(info StepInfo)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(info StepInfo)
}

type Result struct {
	Frames      []Frame
	Energy      []float64
	Metrics     map[string]float64
	Ticks       int
	Collisions  int
	EnergyDrift float64
	Elapsed     time.Duration
}

// Final returns the last recorded frame.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}
