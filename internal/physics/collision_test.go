package physics

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"
)

func TestVector2(t *testing.T) {
	g := NewWithT(t)

	g.Expect(Vec(3, 4).Magnitude()).To(Equal(5.0))
	g.Expect(Vec(1, 2).Add(Vec(3, 4))).To(Equal(Vec(4, 6)))
	g.Expect(Vec(1, 2).Sub(Vec(3, 4))).To(Equal(Vec(-2, -2)))
	g.Expect(Vec(1, 2).Scale(3)).To(Equal(Vec(3, 6)))
	g.Expect(Vec(1, 2).Dot(Vec(3, 4))).To(Equal(11.0))
	g.Expect(Vec(0, 0).Normalize()).To(Equal(Vector2{}))
	g.Expect(Vec(0, -2).Normalize()).To(Equal(Vec(0, -1)))
	g.Expect(Vec(math.NaN(), 0).IsFinite()).To(BeFalse())
}

func TestOverlaps(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name string
		b    Vector2
		want bool
	}{
		{"apart", Vec(5.001, 0), false},
		{"exactly touching", Vec(5, 0), true},
		{"touching diagonally", Vec(3, 4), true},
		{"intersecting", Vec(2, 1), true},
		{"coincident", Vec(0, 0), true},
		{"far", Vec(100, 100), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestBody(t, p, 0, 3, Vec(0, 0), Vector2{})
			b := newTestBody(t, p, 1, 2, tt.b, Vector2{})
			if got := Overlaps(a, b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := Overlaps(b, a); got != tt.want {
				t.Errorf("Overlaps swapped = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeparationVectorRemovesOverlap(t *testing.T) {
	p := DefaultParams()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		ra := 5 + rng.Float64()*35
		rb := 5 + rng.Float64()*35
		angle := rng.Float64() * 2 * math.Pi
		d := rng.Float64() * (ra + rb)

		a := newTestBody(t, p, 0, ra, Vec(0, 0), Vector2{})
		b := newTestBody(t, p, 1, rb, Vec(d*math.Cos(angle), d*math.Sin(angle)), Vector2{})

		s := SeparationVector(a, b)
		a.Position = a.Position.Add(s.Scale(0.5))
		b.Position = b.Position.Sub(s.Scale(0.5))

		dist := a.Position.Sub(b.Position).Magnitude()
		if dist < ra+rb-SeparationEpsilon {
			t.Fatalf("case %d: distance %.9f after separation, want >= %.9f", i, dist, ra+rb-SeparationEpsilon)
		}
	}
}

func TestSeparationVectorDirection(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	a := newTestBody(t, p, 0, 5, Vec(4, 3), Vector2{})
	b := newTestBody(t, p, 1, 5, Vec(0, 0), Vector2{})

	s := SeparationVector(a, b)
	g.Expect(s.X).To(BeNumerically(">", 0))
	g.Expect(s.Y).To(BeNumerically(">", 0))
	g.Expect(s.Magnitude()).To(BeNumerically("~", 5, 1e-5))

	swapped := SeparationVector(b, a)
	g.Expect(swapped.X).To(BeNumerically("~", -s.X, 1e-12))
	g.Expect(swapped.Y).To(BeNumerically("~", -s.Y, 1e-12))
}

func TestSeparationVectorDegenerate(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	a := newTestBody(t, p, 0, 5, Vec(0, 0), Vector2{})
	b := newTestBody(t, p, 1, 5, Vec(0, 0), Vector2{})

	s := SeparationVector(a, b)
	g.Expect(s.IsFinite()).To(BeTrue())
	g.Expect(s.Magnitude()).To(BeNumerically("~", 10, 1e-9))

	flush := newTestBody(t, p, 2, 5, Vec(10, 0), Vector2{})
	g.Expect(Overlaps(a, flush)).To(BeTrue())
	g.Expect(SeparationVector(a, flush)).To(Equal(Vector2{}))
}

func TestElasticExchangesEqualMasses(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	a := newTestBody(t, p, 0, 10, Vec(-10, 0), Vec(1, 0))
	b := newTestBody(t, p, 1, 10, Vec(10, 0), Vec(-1, 0))

	va, vb := Elastic{}.Respond(a, b)
	g.Expect(va.X).To(BeNumerically("~", -1, 1e-12))
	g.Expect(va.Y).To(BeNumerically("~", 0, 1e-12))
	g.Expect(vb.X).To(BeNumerically("~", 1, 1e-12))
	g.Expect(vb.Y).To(BeNumerically("~", 0, 1e-12))
}

func TestResponseLawsConserveMomentum(t *testing.T) {
	p := DefaultParams()
	rng := rand.New(rand.NewSource(11))
	laws := []ResponseLaw{Elastic{}, Merge{}}

	for _, law := range laws {
		t.Run(law.Name(), func(t *testing.T) {
			g := NewWithT(t)
			for i := 0; i < 500; i++ {
				a := newTestBody(t, p, 0, 5+rng.Float64()*30, Vec(rng.Float64()*20, rng.Float64()*20),
					Vec(rng.Float64()*20-10, rng.Float64()*20-10))
				b := newTestBody(t, p, 1, 5+rng.Float64()*30, Vec(rng.Float64()*20, rng.Float64()*20),
					Vec(rng.Float64()*20-10, rng.Float64()*20-10))

				before := a.Momentum().Add(b.Momentum())
				a.Velocity, b.Velocity = law.Respond(a, b)
				after := a.Momentum().Add(b.Momentum())

				scale := 1 + before.Magnitude()
				g.Expect(after.X).To(BeNumerically("~", before.X, 1e-9*scale))
				g.Expect(after.Y).To(BeNumerically("~", before.Y, 1e-9*scale))
			}
		})
	}
}

func TestResponseLawsSymmetric(t *testing.T) {
	p := DefaultParams()

	for _, law := range []ResponseLaw{Elastic{}, Merge{}} {
		t.Run(law.Name(), func(t *testing.T) {
			g := NewWithT(t)
			a := newTestBody(t, p, 0, 8, Vec(0, 0), Vec(3, 1))
			b := newTestBody(t, p, 1, 12, Vec(15, 5), Vec(-2, 0))

			va, vb := law.Respond(a, b)
			vb2, va2 := law.Respond(b, a)
			g.Expect(va2.X).To(BeNumerically("~", va.X, 1e-12))
			g.Expect(va2.Y).To(BeNumerically("~", va.Y, 1e-12))
			g.Expect(vb2.X).To(BeNumerically("~", vb.X, 1e-12))
			g.Expect(vb2.Y).To(BeNumerically("~", vb.Y, 1e-12))
		})
	}
}

func TestMergeAveragesVelocity(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	a := newTestBody(t, p, 0, 10, Vec(0, 0), Vec(4, 0))
	b := newTestBody(t, p, 1, 10, Vec(15, 0), Vec(0, 2))

	va, vb := Merge{}.Respond(a, b)
	g.Expect(va).To(Equal(vb))
	g.Expect(va.X).To(BeNumerically("~", 2, 1e-12))
	g.Expect(va.Y).To(BeNumerically("~", 1, 1e-12))
}

func TestResolve(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	a := newTestBody(t, p, 0, 10, Vec(-8, 0), Vec(2, 0))
	b := newTestBody(t, p, 1, 10, Vec(8, 0), Vec(-2, 0))

	g.Expect(Resolve(a, b, Elastic{})).To(BeTrue())
	g.Expect(a.Position.X).To(BeNumerically("~", -10, 1e-6))
	g.Expect(b.Position.X).To(BeNumerically("~", 10, 1e-6))
	g.Expect(a.Velocity.X).To(BeNumerically("~", -2, 1e-9))
	g.Expect(b.Velocity.X).To(BeNumerically("~", 2, 1e-9))
	g.Expect(a.Colliding && b.Colliding).To(BeTrue())

	// Already separating: positions fixed, velocities untouched.
	c := newTestBody(t, p, 2, 10, Vec(-8, 100), Vec(-1, 0))
	d := newTestBody(t, p, 3, 10, Vec(8, 100), Vec(1, 0))
	g.Expect(Resolve(c, d, Elastic{})).To(BeTrue())
	g.Expect(c.Velocity).To(Equal(Vec(-1, 0)))
	g.Expect(d.Velocity).To(Equal(Vec(1, 0)))

	e := newTestBody(t, p, 4, 10, Vec(-50, 0), Vec(1, 0))
	g.Expect(Resolve(a, e, Elastic{})).To(BeFalse())
	g.Expect(e.Colliding).To(BeFalse())
}

func TestResolveRestingContact(t *testing.T) {
	g := NewWithT(t)
	p := DefaultParams()

	// Exactly touching with a shared velocity, as a merge leaves a pair.
	a := newTestBody(t, p, 0, 10, Vec(-10, 50), Vec(0, -3))
	b := newTestBody(t, p, 1, 10, Vec(10, 50), Vec(0, -3))
	g.Expect(Overlaps(a, b)).To(BeTrue())
	g.Expect(Resolve(a, b, Merge{})).To(BeFalse())
	g.Expect(a.Colliding || b.Colliding).To(BeFalse())
	g.Expect(a.Position).To(Equal(Vec(-10, 50)))

	// Touching but closing in is still a collision.
	c := newTestBody(t, p, 2, 10, Vec(-10, 150), Vec(1, 0))
	d := newTestBody(t, p, 3, 10, Vec(10, 150), Vec(-1, 0))
	g.Expect(Resolve(c, d, Elastic{})).To(BeTrue())
	g.Expect(c.Colliding && d.Colliding).To(BeTrue())
	g.Expect(c.Velocity.X).To(BeNumerically("~", -1, 1e-9))
}
