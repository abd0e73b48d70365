package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

func arena(n int) []*physics.Particle {
	ps := make([]*physics.Particle, n)
	for i := range ps {
		p, _ := physics.NewParticle(i, r3.Vec{X: float64(i%100) * 3, Y: float64(i/100) * 3}, 1, nil)
		p.SetVelocity(r3.Vec{X: 0.1 * float64(i%7), Y: -0.05 * float64(i%5)})
		ps[i] = p
	}
	return ps
}

func TestVerletMatchesSequential(t *testing.T) {
	b := dynamo.NewBounds2D(-10, -10, 400, 400)
	par := arena(2000)
	seq := arena(2000)

	for step := 0; step < 50; step++ {
		for i := range par {
			par[i].AddGravity(r3.Vec{Y: 0.01})
			seq[i].AddGravity(r3.Vec{Y: 0.01})
		}
		NewVerlet(4).Step(par, b, 1)
		NewSequential().Step(seq, b, 1)
	}

	for i := range par {
		if par[i].Cur != seq[i].Cur || par[i].Prev != seq[i].Prev {
			t.Fatalf("particle %d diverged: %v vs %v", i, par[i].Cur, seq[i].Cur)
		}
	}
}

func TestVerletFreeFall(t *testing.T) {
	p, _ := physics.NewParticle(0, r3.Vec{}, 1, nil)
	ps := []*physics.Particle{p}
	b := dynamo.NewBounds2D(-1e6, -1e6, 1e6, 1e6)
	g := 9.81
	dt := 0.01

	integ := New(1)
	steps := 100
	for i := 0; i < steps; i++ {
		p.AddGravity(r3.Vec{Y: -g})
		integ.Step(ps, b, dt)
	}

	// Each step adds g*dt^2/2 to the displacement, so x_n = h*n(n+1)/2.
	h := -0.5 * g * dt * dt
	n := float64(steps)
	want := h * n * (n + 1) / 2
	if math.Abs(p.Cur.Y-want) > 1e-9 {
		t.Errorf("y = %v, want %v", p.Cur.Y, want)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(1).(*Sequential); !ok {
		t.Error("New(1) should be sequential")
	}
	if v, ok := New(0).(*Verlet); !ok || v.Workers != 0 {
		t.Error("New(0) should be a GOMAXPROCS Verlet")
	}
}
