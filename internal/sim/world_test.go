package sim

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/forces"
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

func kineticEnergy(ps []*physics.Particle) float64 {
	var e float64
	for _, p := range ps {
		e += 0.5 * p.Mass * r3.Norm2(p.Velocity())
	}
	return e
}

func dist(a, b *physics.Particle) float64 {
	return r3.Norm(r3.Sub(b.Cur, a.Cur))
}

var _ = Describe("World", func() {
	var (
		box   dynamo.Bounds
		param *physics.Param
		cfg   Config
		w     *World
	)

	BeforeEach(func() {
		box = dynamo.NewBounds2D(-10, -10, 10, 10)
		param = physics.DefaultParam()
		cfg = DefaultConfig()
	})

	build := func() {
		var err error
		w, err = NewWorld(box, param, cfg)
		Expect(err).NotTo(HaveOccurred())
	}

	add := func(pos r3.Vec, radius float64) *physics.Particle {
		p, err := w.AddParticle(pos, radius)
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	Describe("construction", func() {
		It("rejects invalid bounds and config", func() {
			_, err := NewWorld(dynamo.NewBounds2D(1, 1, 0, 0), nil, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidBounds))

			cfg.Dt = 0
			_, err = NewWorld(box, nil, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("assigns arena indices and tracks the largest radius", func() {
			build()
			a := add(r3.Vec{}, 0.5)
			b := add(r3.Vec{X: 3}, 2)
			Expect(a.Index).To(Equal(0))
			Expect(b.Index).To(Equal(1))
			Expect(w.MaxRadius()).To(Equal(2.0))
			Expect(w.Len()).To(Equal(2))
			Expect(a.Param()).To(BeIdenticalTo(param))

			_, err := w.Particle(2)
			Expect(err).To(MatchError(dynamo.ErrUnknownParticle))
		})
	})

	Describe("springs", func() {
		BeforeEach(func() {
			build()
			add(r3.Vec{}, 0.5)
			add(r3.Vec{X: 3, Y: 4}, 0.5)
		})

		It("stores an active spring and an inactive mirror", func() {
			Expect(w.Connect(0, 1, -1, 0.5)).To(Succeed())

			fwd, ok := w.Particles()[0].SpringTo(1)
			Expect(ok).To(BeTrue())
			Expect(fwd.Active).To(BeTrue())
			Expect(fwd.RestLength).To(BeNumerically("~", 5, 1e-12))

			back, ok := w.Particles()[1].SpringTo(0)
			Expect(ok).To(BeTrue())
			Expect(back.Active).To(BeFalse())
			Expect(w.SpringCount()).To(Equal(1))
		})

		It("rejects duplicates in either direction", func() {
			Expect(w.Connect(0, 1, 2, 1)).To(Succeed())
			Expect(w.Connect(0, 1, 2, 1)).To(MatchError(dynamo.ErrDuplicateSpring))
			Expect(w.Connect(1, 0, 2, 1)).To(MatchError(dynamo.ErrDuplicateSpring))
			Expect(w.Particles()[1].SpringCount()).To(Equal(1))
		})

		It("rejects unknown endpoints", func() {
			Expect(w.Connect(0, 9, 1, 1)).To(MatchError(dynamo.ErrUnknownParticle))
		})

		It("disconnects both directions", func() {
			Expect(w.Connect(0, 1, 2, 1)).To(Succeed())
			Expect(w.Disconnect(1, 0)).To(BeTrue())
			Expect(w.Particles()[0].HasSpring(1)).To(BeFalse())
			Expect(w.Particles()[1].HasSpring(0)).To(BeFalse())
			Expect(w.SpringCount()).To(Equal(0))
			Expect(w.Disconnect(0, 1)).To(BeFalse())
		})

		DescribeTable("residual shrinks with every relaxation pass",
			func(solver Solver) {
				var prev = math.Inf(1)
				for iters := 1; iters <= 6; iters++ {
					cfg.Solver = solver
					cfg.SpringIterations = iters
					cfg.Collisions = false
					build()
					add(r3.Vec{}, 0.5)
					add(r3.Vec{X: 5}, 0.5)
					Expect(w.Connect(0, 1, 2, 0.5)).To(Succeed())

					w.Step()
					residual := math.Abs(dist(w.Particles()[0], w.Particles()[1]) - 2)
					Expect(residual).To(BeNumerically("<", prev))
					prev = residual
				}
				Expect(prev).To(BeNumerically("~", 3*math.Pow(0.5, 6), 1e-9))
			},
			Entry("gauss-seidel", SolverGaussSeidel),
			Entry("jacobi", SolverJacobi),
		)

		It("relaxes springs added directly on a particle", func() {
			cfg.Collisions = false
			build()
			a := add(r3.Vec{}, 0.5)
			b := add(r3.Vec{X: 5}, 0.5)
			Expect(a.AddSpring(physics.Spring{Target: b.Index, RestLength: 2, Stiffness: 1, Active: true})).To(Succeed())
			Expect(w.SpringCount()).To(Equal(1))

			w.Step()
			Expect(dist(a, b)).To(BeNumerically("<", 5))
			Expect(dist(a, b)).To(BeNumerically("~", 2, 1e-6))
		})

		It("skips relaxation with zero iterations", func() {
			cfg.SpringIterations = 0
			cfg.Collisions = false
			build()
			add(r3.Vec{}, 0.5)
			add(r3.Vec{X: 5}, 0.5)
			Expect(w.Connect(0, 1, 2, 1)).To(Succeed())
			w.Step()
			Expect(dist(w.Particles()[0], w.Particles()[1])).To(Equal(5.0))
		})

		It("holds a pinned anchor in place", func() {
			cfg.Collisions = false
			build()
			anchor := add(r3.Vec{Y: 5}, 0.5)
			anchor.EnableForces = false
			anchor.EnableSprings = false
			for i := 1; i <= 4; i++ {
				add(r3.Vec{Y: 5 - float64(i)}, 0.5)
				Expect(w.Connect(i-1, i, -1, 1)).To(Succeed())
			}
			w.AddForce(forces.NewGravity(r3.Vec{Y: -0.05}))

			for i := 0; i < 100; i++ {
				w.Step()
			}
			Expect(anchor.Cur).To(Equal(r3.Vec{Y: 5}))
			Expect(w.CheckFinite()).To(Succeed())
		})
	})

	Describe("collisions", func() {
		BeforeEach(func() {
			param.DampCollision = 0.8
		})

		It("separates the canonical overlapping pair within five steps", func() {
			build()
			a := add(r3.Vec{}, 1)
			b := add(r3.Vec{X: 1.5}, 1)

			separated := false
			for i := 0; i < 5 && !separated; i++ {
				before := dist(a, b)
				w.Step()
				Expect(dist(a, b)).To(BeNumerically(">", before))
				separated = dist(a, b) >= 2
			}
			Expect(separated).To(BeTrue())
			Expect(a.Cur.X).To(BeNumerically("<", 0))
			Expect(b.Cur.X).To(BeNumerically(">", 1.5))
		})

		It("resolves each overlapping pair once per step", func() {
			build()
			a := add(r3.Vec{}, 1)
			b := add(r3.Vec{X: 1.5}, 1)
			w.Step()
			Expect(w.Contacts()).To(Equal(1))
			Expect(dist(a, b)).To(BeNumerically("~", 1.5+2*1.5*0.8*(4/6.25-0.5), 1e-12))
		})

		It("exempts particles sharing a collision group", func() {
			build()
			a := add(r3.Vec{}, 1)
			b := add(r3.Vec{X: 1}, 1)
			a.SetCollisionGroup(7)
			b.SetCollisionGroup(7)
			w.Step()
			Expect(dist(a, b)).To(Equal(1.0))
			Expect(w.Contacts()).To(BeZero())
		})

		It("splits the correction by mass", func() {
			build()
			a := add(r3.Vec{}, 1)
			b := add(r3.Vec{X: 1}, 1)
			Expect(b.SetMass(3)).To(Succeed())
			w.Step()
			Expect(math.Abs(a.Cur.X) / math.Abs(b.Cur.X-1)).To(BeNumerically("~", 3, 1e-9))
		})

		It("does nothing when disabled", func() {
			cfg.Collisions = false
			build()
			a := add(r3.Vec{}, 1)
			b := add(r3.Vec{X: 1}, 1)
			w.Step()
			Expect(dist(a, b)).To(Equal(1.0))

			cfg.Collisions = true
			param.DampCollision = 0
			build()
			a = add(r3.Vec{}, 1)
			b = add(r3.Vec{X: 1}, 1)
			w.Step()
			Expect(dist(a, b)).To(Equal(1.0))
		})

		It("clears contact counters once collisions are switched off", func() {
			build()
			a := add(r3.Vec{}, 1)
			b := add(r3.Vec{X: 1.5}, 1)
			w.Step()
			Expect(w.Contacts()).To(Equal(1))
			Expect(a.CollisionCount() + b.CollisionCount()).To(Equal(2))

			w.Param().DampCollision = 0
			for i := 0; i < 3; i++ {
				w.Step()
			}
			Expect(w.Contacts()).To(BeZero())
			for _, p := range w.Particles() {
				Expect(p.CollisionCount()).To(BeZero())
				Expect(p.PairCount()).To(BeZero())
				Expect(p.CollisionDisplacement()).To(Equal(r3.Vec{}))
			}
		})

		It("separates along depth in a volumetric box", func() {
			box = dynamo.NewBounds3D(-10, -10, -10, 10, 10, 10)
			build()
			a := add(r3.Vec{}, 1)
			b := add(r3.Vec{Z: 1}, 1)
			w.Step()
			Expect(b.Cur.Z - a.Cur.Z).To(BeNumerically(">", 1))
		})

		It("grows the broad phase for large particles", func() {
			build()
			add(r3.Vec{}, 1)
			big := add(r3.Vec{X: 3.5}, 0.5)
			Expect(big.SetRadius(3)).To(Succeed())
			w.Step()
			Expect(w.MaxRadius()).To(Equal(3.0))
			Expect(w.Grid().CellSize()).To(BeNumerically(">=", 6))
			Expect(w.Contacts()).To(Equal(1))
		})
	})

	Describe("step pipeline", func() {
		It("advances time and step count on every call", func() {
			cfg.Dt = 0.5
			build()
			add(r3.Vec{}, 1)
			for i := 0; i < 4; i++ {
				w.Step()
			}
			Expect(w.StepCount()).To(Equal(uint64(4)))
			Expect(w.Time()).To(BeNumerically("~", 2, 1e-12))
		})

		It("does not create kinetic energy without forces or damping", func() {
			box = dynamo.NewBounds2D(0, 0, 40, 40)
			cfg.Collisions = false
			build()
			rng := rand.New(rand.NewSource(3))
			for i := 0; i < 50; i++ {
				p := add(r3.Vec{X: 2 + rng.Float64()*36, Y: 2 + rng.Float64()*36}, 1)
				p.SetVelocity(r3.Vec{X: rng.Float64() - 0.5, Y: rng.Float64() - 0.5})
			}
			e0 := kineticEnergy(w.Particles())

			for i := 0; i < 500; i++ {
				w.Step()
				Expect(kineticEnergy(w.Particles())).To(BeNumerically("<=", e0*(1+1e-9)))
			}
			Expect(kineticEnergy(w.Particles())).To(BeNumerically("~", e0, e0*1e-9))
		})

		It("keeps a settling pile inside the box", func() {
			box = dynamo.NewBounds2D(0, 0, 30, 30)
			param.DampBounds = 0.5
			param.DampVelocity = 0.99
			build()
			w.AddForce(forces.NewGravity(r3.Vec{Y: -0.05}))
			rng := rand.New(rand.NewSource(5))
			for i := 0; i < 120; i++ {
				add(r3.Vec{X: 1 + rng.Float64()*28, Y: 1 + rng.Float64()*28}, 0.8)
			}

			for i := 0; i < 300; i++ {
				w.Step()
			}
			Expect(w.CheckFinite()).To(Succeed())
			inner := box.Inset(0.8 - 1e-9)
			for _, p := range w.Particles() {
				Expect(inner.Contains(p.Cur)).To(BeTrue(), "particle %d escaped to %v", p.Index, p.Cur)
			}
		})
	})
})
