package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
)

// Simulator owns a fixed population of bodies and advances them one tick at a
// time. It is not safe for concurrent use.
type Simulator struct {
	params *physics.Params
	law    physics.ResponseLaw

	// order is re-sorted by left edge every tick; byID is fixed.
	order []*physics.Body
	byID  []*physics.Body

	metrics   []Metric
	observers []Observer
	logger    *slog.Logger

	tick       int
	collisions int
}

func New(p *physics.Params, law physics.ResponseLaw, bodies []*physics.Body) (*Simulator, error) {
	if p == nil {
		return nil, ErrNoParams
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if law == nil {
		return nil, ErrNoLaw
	}

	seen := make(map[int]bool, len(bodies))
	for _, b := range bodies {
		if b.Params() != p {
			return nil, fmt.Errorf("%w: body %d", ErrForeignBody, b.ID)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateBody, b.ID)
		}
		seen[b.ID] = true
	}

	byID := append([]*physics.Body(nil), bodies...)
	sort.Slice(byID, func(i, j int) bool { return byID[i].ID < byID[j].ID })

	return &Simulator{
		params:    p,
		law:       law,
		order:     append([]*physics.Body(nil), bodies...),
		byID:      byID,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)       { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)   { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *slog.Logger) { s.logger = l }
func (s *Simulator) Params() *physics.Params  { return s.params }
func (s *Simulator) Law() physics.ResponseLaw { return s.law }
func (s *Simulator) Tick() int                { return s.tick }
func (s *Simulator) Collisions() int          { return s.collisions }
func (s *Simulator) Bodies() []*physics.Body  { return s.byID }

// Body returns the body with the given ID.
func (s *Simulator) Body(id int) (*physics.Body, bool) {
	i := sort.Search(len(s.byID), func(i int) bool { return s.byID[i].ID >= id })
	if i < len(s.byID) && s.byID[i].ID == id {
		return s.byID[i], true
	}
	return nil, false
}

// Step runs one tick: sort by left edge, sweep candidate pairs, resolve every
// overlapping pair, then advance each body with its input. Resolution uses
// positions from before this tick's integration. It returns the number of
// colliding pairs; pairs at rest in contact are not counted.
func (s *Simulator) Step(src input.Source) int {
	if src == nil {
		src = input.NewNone()
	}

	physics.SortByLeftEdge(s.order)

	contacts := 0
	physics.Sweep(s.order, func(i, j int) {
		if physics.Resolve(s.order[i], s.order[j], s.law) {
			contacts++
		}
	})

	for _, b := range s.order {
		b.Advance(src.Poll(b.ID))
	}
	if te, ok := src.(input.TickEnder); ok {
		te.EndTick()
	}

	s.tick++
	s.collisions += contacts

	info := StepInfo{Tick: s.tick, Contacts: contacts, Bodies: s.byID, Params: s.params}
	for _, m := range s.metrics {
		m.Observe(info)
	}
	for _, obs := range s.observers {
		obs.OnStep(info)
	}
	return contacts
}

// Frame snapshots the current state in ID order.
func (s *Simulator) Frame() Frame {
	f := Frame{Tick: s.tick, Sprites: make([]Sprite, len(s.byID))}
	for i, b := range s.byID {
		f.Sprites[i] = Sprite{
			ID:       b.ID,
			Position: b.Position,
			Velocity: b.Velocity,
			Radius:   b.Radius(),
			Color:    b.Color,
		}
	}
	return f
}

// Run steps the simulation in real time, drawing a frame after every tick and
// sleeping for what is left of the tick period. Slow ticks are not skipped;
// the loop just falls behind. Run returns nil when r reports ErrStopped and
// ctx.Err() when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, src input.Source, r Renderer) error {
	period := s.params.Tick
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	if err := r.Draw(s.Frame()); err != nil {
		return drawErr(err, s.tick)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := time.Now()
		s.Step(src)
		if err := r.Draw(s.Frame()); err != nil {
			return drawErr(err, s.tick)
		}

		elapsed := time.Since(start)
		if elapsed >= period {
			s.logger.Debug("tick overran period", "tick", s.tick, "elapsed", elapsed, "period", period)
			continue
		}

		timer.Reset(period - elapsed)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func drawErr(err error, tick int) error {
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return fmt.Errorf("draw tick %d: %w", tick, err)
}

// RunTicks runs n ticks as fast as possible and records every frame,
// including the initial one.
func (s *Simulator) RunTicks(ctx context.Context, src input.Source, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTicks, n)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		Frames:  make([]Frame, 0, n+1),
		Energy:  make([]float64, 0, n+1),
		Metrics: make(map[string]float64),
	}

	start := time.Now()
	initialEnergy := physics.TotalEnergy(s.byID)
	startCollisions := s.collisions

	result.Frames = append(result.Frames, s.Frame())
	result.Energy = append(result.Energy, initialEnergy)

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy, startCollisions, start)
			return result, ctx.Err()
		default:
		}

		s.Step(src)
		result.Ticks++
		result.Frames = append(result.Frames, s.Frame())
		result.Energy = append(result.Energy, physics.TotalEnergy(s.byID))
	}

	s.finish(result, initialEnergy, startCollisions, start)
	return result, nil
}

func (s *Simulator) finish(result *Result, initialEnergy float64, startCollisions int, start time.Time) {
	result.Collisions = s.collisions - startCollisions
	result.Elapsed = time.Since(start)

	if initialEnergy != 0 {
		final := result.Energy[len(result.Energy)-1]
		result.EnergyDrift = math.Abs(final-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
