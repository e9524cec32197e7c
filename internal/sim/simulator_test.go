package sim_test

import (
	"context"
	"errors"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bounce/internal/input"
	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

type countingMetric struct {
	ticks    int
	contacts int
}

func (c *countingMetric) Name() string { return "count" }

func (c *countingMetric) Observe(info sim.StepInfo) {
	c.ticks++
	c.contacts += info.Contacts
}

func (c *countingMetric) Value() float64 { return float64(c.ticks) }

func (c *countingMetric) Reset() { *c = countingMetric{} }

type observerFunc func(info sim.StepInfo)

func (f observerFunc) OnStep(info sim.StepInfo) { f(info) }

func mustBody(p *physics.Params, id int, r float64, pos, vel physics.Vector2) *physics.Body {
	b, err := physics.NewBody(p, physics.BodySpec{ID: id, Radius: r, Position: pos, Velocity: vel, Gain: 2})
	Expect(err).NotTo(HaveOccurred())
	return b
}

func weightless() *physics.Params {
	p := physics.DefaultParams()
	p.Gravity = 0
	p.Damping = physics.NoDamping{}
	p.Tick = time.Millisecond
	return p
}

func seeded(seed int64) (*sim.Simulator, input.Source, error) {
	p := physics.DefaultParams()
	rng := rand.New(rand.NewSource(seed))
	bodies := make([]*physics.Body, 0, 6)
	for i := 0; i < 6; i++ {
		b, err := physics.NewBody(p, physics.BodySpec{
			ID:       i,
			Radius:   10 + rng.Float64()*30,
			Position: physics.Vec(rng.Float64()*100-50, 0),
			Velocity: physics.Vec(rng.Float64()*20-10, 30),
			Gain:     2,
		})
		if err != nil {
			return nil, nil, err
		}
		bodies = append(bodies, b)
	}
	s, err := sim.New(p, physics.Elastic{}, bodies)
	return s, input.NewNone(), err
}

var _ = Describe("Simulator", func() {
	Describe("New", func() {
		It("requires a response law", func() {
			p := weightless()
			_, err := sim.New(p, nil, nil)
			Expect(err).To(MatchError(sim.ErrNoLaw))
		})

		It("rejects bodies built against other params", func() {
			p := weightless()
			b := mustBody(physics.DefaultParams(), 0, 5, physics.Vector2{}, physics.Vector2{})
			_, err := sim.New(p, physics.Elastic{}, []*physics.Body{b})
			Expect(err).To(MatchError(sim.ErrForeignBody))
		})

		It("rejects duplicate ids", func() {
			p := weightless()
			a := mustBody(p, 1, 5, physics.Vec(-100, 0), physics.Vector2{})
			b := mustBody(p, 1, 5, physics.Vec(100, 0), physics.Vector2{})
			_, err := sim.New(p, physics.Elastic{}, []*physics.Body{a, b})
			Expect(err).To(MatchError(sim.ErrDuplicateBody))
		})

		It("rejects invalid params", func() {
			p := weightless()
			p.Width = 0
			_, err := sim.New(p, physics.Elastic{}, nil)
			Expect(err).To(MatchError(physics.ErrInvalidArena))
		})
	})

	Describe("Step", func() {
		var (
			p    *physics.Params
			a, b *physics.Body
			s    *sim.Simulator
		)

		BeforeEach(func() {
			p = weightless()
			a = mustBody(p, 0, 10, physics.Vec(-8, 0), physics.Vec(2, 0))
			b = mustBody(p, 1, 10, physics.Vec(8, 0), physics.Vec(-2, 0))
			var err error
			s, err = sim.New(p, physics.Elastic{}, []*physics.Body{b, a})
			Expect(err).NotTo(HaveOccurred())
		})

		It("resolves collisions before integrating motion", func() {
			Expect(s.Step(nil)).To(Equal(1))

			Expect(a.Velocity.X).To(BeNumerically("~", -2, 1e-9))
			Expect(b.Velocity.X).To(BeNumerically("~", 2, 1e-9))
			Expect(a.Position.X).To(BeNumerically("~", -12, 1e-6))
			Expect(b.Position.X).To(BeNumerically("~", 12, 1e-6))
			Expect(s.Tick()).To(Equal(1))
			Expect(s.Collisions()).To(Equal(1))
		})

		It("stops counting contacts once the pair has separated", func() {
			s.Step(nil)
			Expect(s.Step(nil)).To(Equal(0))
			Expect(s.Collisions()).To(Equal(1))
		})

		It("polls input per body and ends the tick on the source", func() {
			latch := input.NewLatch()
			latch.Press(1, input.Signals{Up: true})

			// The contact normal is tilted by the separation guard, so y picks
			// up a sub-micron share of the exchange.
			s.Step(latch)
			Expect(b.Velocity.Y).To(BeNumerically("~", 2, 1e-5))
			Expect(a.Velocity.Y).To(BeNumerically("~", 0, 1e-5))

			s.Step(latch)
			Expect(b.Velocity.Y).To(BeNumerically("~", 2, 1e-5))
			Expect(latch.Poll(1)).To(Equal(input.Signals{}))
		})

		It("notifies metrics and observers once per tick", func() {
			m := &countingMetric{}
			seen := 0
			s.AddMetric(m)
			s.AddObserver(observerFunc(func(info sim.StepInfo) {
				seen++
				Expect(info.Tick).To(Equal(seen))
				Expect(info.Bodies).To(HaveLen(2))
			}))

			s.Step(nil)
			s.Step(nil)
			Expect(m.ticks).To(Equal(2))
			Expect(m.contacts).To(Equal(1))
			Expect(seen).To(Equal(2))
		})

		It("reports frames in id order regardless of sweep order", func() {
			f := s.Frame()
			Expect(f.Sprites).To(HaveLen(2))
			Expect(f.Sprites[0].ID).To(Equal(0))
			Expect(f.Sprites[1].ID).To(Equal(1))
			Expect(f.Sprites[0].Radius).To(Equal(10.0))

			found, ok := s.Body(1)
			Expect(ok).To(BeTrue())
			Expect(found).To(BeIdenticalTo(b))
			_, ok = s.Body(7)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("merged pairs", func() {
		It("fall once the merge has left them touching", func() {
			p := physics.DefaultParams()
			a := mustBody(p, 0, 10, physics.Vec(-8, 0), physics.Vec(2, 0))
			b := mustBody(p, 1, 10, physics.Vec(8, 0), physics.Vec(-2, 0))
			s, err := sim.New(p, physics.Merge{}, []*physics.Body{a, b})
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Step(nil)).To(Equal(1))
			for i := 0; i < 60; i++ {
				s.Step(nil)
			}

			Expect(s.Collisions()).To(Equal(1))
			Expect(a.Position.Y).To(BeNumerically("<", -50))
			Expect(b.Position.Y).To(BeNumerically("<", -50))
			Expect(a.Velocity.Y).To(BeNumerically("<", 0))
		})
	})

	Describe("RunTicks", func() {
		It("rejects a non-positive tick count", func() {
			s, src, err := seeded(1)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.RunTicks(context.Background(), src, 0)
			Expect(err).To(MatchError(sim.ErrInvalidTicks))
		})

		It("records the initial frame and one frame per tick", func() {
			s, src, err := seeded(1)
			Expect(err).NotTo(HaveOccurred())
			m := &countingMetric{}
			s.AddMetric(m)

			res, err := s.RunTicks(context.Background(), src, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ticks).To(Equal(50))
			Expect(res.Frames).To(HaveLen(51))
			Expect(res.Energy).To(HaveLen(51))
			Expect(res.Final().Tick).To(Equal(50))
			Expect(res.Metrics).To(HaveKeyWithValue("count", 50.0))
		})

		It("keeps every body inside the arena", func() {
			s, src, err := seeded(3)
			Expect(err).NotTo(HaveOccurred())
			s.AddObserver(observerFunc(func(info sim.StepInfo) {
				for _, b := range info.Bodies {
					Expect(info.Params.Contains(b.Position, b.Radius())).To(BeTrue(), "body %d at tick %d", b.ID, info.Tick)
					Expect(b.Position.IsFinite() && b.Velocity.IsFinite()).To(BeTrue())
				}
			}))

			_, err = s.RunTicks(context.Background(), src, 1000)
			Expect(err).NotTo(HaveOccurred())
		})

		It("stops on cancellation with the ticks done so far", func() {
			s, src, err := seeded(1)
			Expect(err).NotTo(HaveOccurred())
			ctx, cancel := context.WithCancel(context.Background())
			s.AddObserver(observerFunc(func(info sim.StepInfo) {
				if info.Tick == 5 {
					cancel()
				}
			}))

			res, err := s.RunTicks(ctx, src, 100)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Ticks).To(Equal(5))
		})
	})

	Describe("Run", func() {
		It("returns cleanly when the renderer stops", func() {
			s, src, err := seeded(2)
			Expect(err).NotTo(HaveOccurred())
			s.Params().Tick = time.Millisecond

			var frames []sim.Frame
			r := sim.RendererFunc(func(f sim.Frame) error {
				frames = append(frames, f)
				if len(frames) == 3 {
					return sim.ErrStopped
				}
				return nil
			})

			Expect(s.Run(context.Background(), src, r)).To(Succeed())
			Expect(s.Tick()).To(Equal(2))
			Expect(frames[0].Tick).To(Equal(0))
			Expect(frames[2].Tick).To(Equal(2))
		})

		It("wraps renderer failures", func() {
			s, src, err := seeded(2)
			Expect(err).NotTo(HaveOccurred())
			boom := errors.New("boom")

			err = s.Run(context.Background(), src, sim.RendererFunc(func(sim.Frame) error { return boom }))
			Expect(err).To(MatchError(boom))
			Expect(err.Error()).To(ContainSubstring("draw tick 0"))
		})

		It("honours cancellation", func() {
			s, src, err := seeded(2)
			Expect(err).NotTo(HaveOccurred())
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			err = s.Run(ctx, src, sim.RendererFunc(func(sim.Frame) error { return nil }))
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(s.Tick()).To(BeNumerically(">", 0))
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs each seed independently and deterministically", func() {
		first, err := sim.NewEnsemble(seeded, 4, 10).Run(context.Background(), 100)
		Expect(err).NotTo(HaveOccurred())
		second, err := sim.NewEnsemble(seeded, 4, 10).Run(context.Background(), 100)
		Expect(err).NotTo(HaveOccurred())

		Expect(first).To(HaveLen(4))
		for i := range first {
			Expect(first[i].Final()).To(Equal(second[i].Final()))
		}
		Expect(first[0].Final()).NotTo(Equal(first[1].Final()))
	})

	It("surfaces factory errors", func() {
		failing := func(seed int64) (*sim.Simulator, input.Source, error) {
			return nil, nil, errors.New("no bodies")
		}
		_, err := sim.NewEnsemble(failing, 2, 0).Run(context.Background(), 10)
		Expect(err).To(MatchError(ContainSubstring("no bodies")))
	})

	It("averages a metric", func() {
		results := []*sim.Result{
			{Metrics: map[string]float64{"x": 1}},
			{Metrics: map[string]float64{"x": 3}},
		}
		Expect(sim.Mean(results, "x")).To(Equal(2.0))
		Expect(sim.Mean(nil, "x")).To(BeZero())
	})
})
