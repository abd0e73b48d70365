package experiment

import (
	"math"
	"math/rand"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/forces"
	"github.com/san-kum/verlet/internal/physics"
	"github.com/san-kum/verlet/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func addGravity(w *sim.World, cfg *config.Config) {
	if g := cfg.GravityVec(); g != (r3.Vec{}) {
		w.AddForce(forces.NewGravity(g))
	}
}

// scatter places cfg.Particles.Count particles uniformly inside the box.
func scatter(w *sim.World, cfg *config.Config, rng *rand.Rand) error {
	pc := cfg.Particles
	base := cfg.ParticleRadius()
	b := w.Bounds()

	for i := 0; i < pc.Count; i++ {
		r := base * (1 + pc.RadiusJitter*(2*rng.Float64()-1))
		inner := b.Inset(r)
		size := inner.Size()
		pos := r3.Vec{
			X: inner.Min.X + rng.Float64()*math.Max(size.X, 0),
			Y: inner.Min.Y + rng.Float64()*math.Max(size.Y, 0),
		}
		if !b.Planar() {
			pos.Z = inner.Min.Z + rng.Float64()*math.Max(size.Z, 0)
		}

		p, err := w.AddParticle(pos, r)
		if err != nil {
			return err
		}
		if err := p.SetMass(pc.Mass * (r * r) / (base * base)); err != nil {
			return err
		}
		if pc.Speed > 0 {
			p.SetVelocity(randomDirection(rng, b.Planar(), pc.Speed))
		}
	}
	return nil
}

func randomDirection(rng *rand.Rand, planar bool, speed float64) r3.Vec {
	if planar {
		a := rng.Float64() * 2 * math.Pi
		return r3.Vec{X: speed * math.Cos(a), Y: speed * math.Sin(a)}
	}
	v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{X: speed}
	}
	return r3.Scale(speed/n, v)
}

func buildPile(w *sim.World, cfg *config.Config, rng *rand.Rand) error {
	addGravity(w, cfg)
	return scatter(w, cfg, rng)
}

// buildGas makes the shared parameters lossless; every particle sees the
// change because the block is shared.
func buildGas(w *sim.World, cfg *config.Config, rng *rand.Rand) error {
	p := w.Param()
	p.DampBounds = 1
	p.DampVelocity = 1
	return scatter(w, cfg, rng)
}

func buildFlow(w *sim.World, cfg *config.Config, rng *rand.Rand) error {
	addGravity(w, cfg)
	cells := cfg.Flow.Cells
	if cells < 1 {
		cells = 1
	}
	field, err := forces.NewVortex(w.Bounds(), cells, cells, cfg.Flow.Mult)
	if err != nil {
		return err
	}
	w.AddForce(field)
	return scatter(w, cfg, rng)
}

func pin(p *physics.Particle) {
	p.EnableForces = false
	p.EnableSprings = false
}

// buildCloth hangs a rectangular lattice from its pinned top row. The lattice
// is one collision group so it never collides with itself.
func buildCloth(w *sim.World, cfg *config.Config, rng *rand.Rand) error {
	addGravity(w, cfg)
	b := w.Bounds()
	size := b.Size()

	cols := cfg.Springs.Columns
	if cols < 2 {
		cols = int(math.Max(2, math.Round(math.Sqrt(float64(cfg.Particles.Count)))))
	}
	rows := cfg.Particles.Count / cols
	if rows < 2 {
		rows = 2
	}

	spacing := math.Min(0.6*size.X/float64(cols-1), 0.8*size.Y/float64(rows-1))
	radius := 0.4 * spacing
	origin := r3.Vec{
		X: b.Min.X + 0.5*(size.X-spacing*float64(cols-1)),
		Y: b.Max.Y - radius - 0.05*size.Y,
	}
	if !b.Planar() {
		origin.Z = b.Center().Z
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			pos := r3.Add(origin, r3.Vec{X: float64(col) * spacing, Y: -float64(row) * spacing})
			p, err := w.AddParticle(pos, radius)
			if err != nil {
				return err
			}
			p.SetCollisionGroup(0)
			if row == 0 {
				pin(p)
			}
		}
	}

	k := cfg.Springs.Stiffness
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if col+1 < cols {
				if err := w.Connect(i, i+1, -1, k); err != nil {
					return err
				}
			}
			if row+1 < rows {
				if err := w.Connect(i, i+cols, -1, k); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// buildChain lays Count links out horizontally from a pinned anchor so the
// chain swings down like a pendulum.
func buildChain(w *sim.World, cfg *config.Config, rng *rand.Rand) error {
	addGravity(w, cfg)
	b := w.Bounds()
	size := b.Size()

	n := cfg.Particles.Count
	if n < 2 {
		n = 2
	}
	spacing := math.Min(0.45*size.X/float64(n-1), 0.45*size.Y/float64(n-1))
	radius := 0.4 * spacing
	anchor := r3.Vec{X: b.Center().X, Y: b.Max.Y - 0.1*size.Y}
	if !b.Planar() {
		anchor.Z = b.Center().Z
	}

	for i := 0; i < n; i++ {
		p, err := w.AddParticle(r3.Add(anchor, r3.Vec{X: float64(i) * spacing}), radius)
		if err != nil {
			return err
		}
		if err := p.SetMass(cfg.Particles.Mass); err != nil {
			return err
		}
		if i == 0 {
			pin(p)
			continue
		}
		if err := w.Connect(i-1, i, -1, cfg.Springs.Stiffness); err != nil {
			return err
		}
	}
	return nil
}
