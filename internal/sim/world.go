package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/forces"
	"github.com/san-kum/verlet/internal/grid"
	"github.com/san-kum/verlet/internal/integrators"
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// World owns a particle arena and advances it one step at a time. Particle
// indices equal arena offsets and are never reused; particles are not
// removed once added. A World is not safe for concurrent use.
type World struct {
	cfg    Config
	bounds dynamo.Bounds
	param  *physics.Param

	particles  []*physics.Particle
	forces     []forces.Force
	integrator integrators.Integrator
	grid       *grid.Grid

	maxRadius float64

	gen      uint64
	time     float64
	steps    uint64
	contacts int
}

// NewWorld creates an empty world. param is shared by every particle added
// later; nil means lossless defaults.
func NewWorld(b dynamo.Bounds, param *physics.Param, cfg Config) (*World, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if param == nil {
		param = physics.DefaultParam()
	}

	w := &World{
		cfg:        cfg,
		bounds:     b,
		param:      param,
		integrator: integrators.New(cfg.Workers),
		maxRadius:  physics.MinRadius,
	}
	g, err := grid.New(b, 2*w.maxRadius)
	if err != nil {
		return nil, err
	}
	w.grid = g

	dynamo.Logger().Debug("world created",
		"dims", b.Dims(),
		"dt", cfg.Dt,
		"solver", cfg.Solver,
		"spring_iterations", cfg.SpringIterations,
		"collisions", cfg.Collisions,
		"workers", cfg.Workers)
	return w, nil
}

// AddParticle appends a particle at pos and returns it. Its index is the
// previous particle count.
func (w *World) AddParticle(pos r3.Vec, radius float64) (*physics.Particle, error) {
	p, err := physics.NewParticle(len(w.particles), pos, radius, w.param)
	if err != nil {
		return nil, err
	}
	w.particles = append(w.particles, p)
	w.maxRadius = math.Max(w.maxRadius, p.RadiusCollision)
	return p, nil
}

// Particle returns the particle with index i.
func (w *World) Particle(i int) (*physics.Particle, error) {
	if i < 0 || i >= len(w.particles) {
		return nil, fmt.Errorf("%w: %d (have %d)", dynamo.ErrUnknownParticle, i, len(w.particles))
	}
	return w.particles[i], nil
}

// Particles returns the arena. Callers may mutate particle state but must not
// reorder or resize the slice.
func (w *World) Particles() []*physics.Particle { return w.particles }

func (w *World) Len() int { return len(w.particles) }

// Connect links a and b with a spring. rest < 0 uses the current distance.
// a owns the active spring; b records an inactive mirror so both endpoints
// know about the edge.
func (w *World) Connect(a, b int, rest, stiffness float64) error {
	pa, err := w.Particle(a)
	if err != nil {
		return err
	}
	pb, err := w.Particle(b)
	if err != nil {
		return err
	}
	if rest < 0 {
		rest = r3.Norm(r3.Sub(pb.Cur, pa.Cur))
	}
	if math.IsNaN(rest) || math.IsInf(rest, 0) {
		return fmt.Errorf("%w: rest length %v", dynamo.ErrInvalidConfig, rest)
	}

	if err := pa.AddSpring(physics.Spring{Target: b, RestLength: rest, Stiffness: stiffness, Active: true}); err != nil {
		return fmt.Errorf("connect %d-%d: %w", a, b, err)
	}
	if err := pb.AddSpring(physics.Spring{Target: a, RestLength: rest, Stiffness: stiffness}); err != nil {
		pa.RemoveSpring(b)
		return fmt.Errorf("connect %d-%d: %w", a, b, err)
	}
	return nil
}

// Disconnect removes the spring between a and b in both directions and
// reports whether one existed.
func (w *World) Disconnect(a, b int) bool {
	pa, errA := w.Particle(a)
	pb, errB := w.Particle(b)
	if errA != nil || errB != nil {
		return false
	}
	_, okA := pa.RemoveSpring(b)
	_, okB := pb.RemoveSpring(a)
	return okA || okB
}

// SpringCount returns the number of active springs across all particles,
// including those added directly through Particle.AddSpring.
func (w *World) SpringCount() int {
	n := 0
	for _, p := range w.particles {
		for _, s := range p.Springs() {
			if s.Active {
				n++
			}
		}
	}
	return n
}

func (w *World) hasSprings() bool {
	for _, p := range w.particles {
		if p.SpringCount() > 0 {
			return true
		}
	}
	return false
}

func (w *World) AddForce(f forces.Force) { w.forces = append(w.forces, f) }

func (w *World) Forces() []forces.Force { return w.forces }

// MaxRadius returns the largest collision radius seen. It never shrinks.
func (w *World) MaxRadius() float64 { return w.maxRadius }

func (w *World) Bounds() dynamo.Bounds { return w.bounds }
func (w *World) Param() *physics.Param { return w.param }
func (w *World) Config() Config        { return w.cfg }
func (w *World) Time() float64         { return w.time }
func (w *World) StepCount() uint64     { return w.steps }

// Contacts returns the number of pairs resolved in the last step.
func (w *World) Contacts() int { return w.contacts }

// Grid exposes the broad phase as of the last collision stage.
func (w *World) Grid() *grid.Grid { return w.grid }

// Step advances the world by one Dt. The stages always run in the same
// order: external forces, integration, spring relaxation, collisions and a
// final bounds clamp.
func (w *World) Step() {
	w.gen++

	for _, f := range w.forces {
		f.Apply(w.particles, w.time)
	}

	w.integrator.Step(w.particles, w.bounds, w.cfg.Dt)
	w.relaxSprings()
	w.collide()

	for _, p := range w.particles {
		p.UpdateBounds(w.bounds)
	}

	w.time += w.cfg.Dt
	w.steps++
}

func (w *World) relaxSprings() {
	if !w.hasSprings() {
		return
	}
	for i := 0; i < w.cfg.SpringIterations; i++ {
		if w.cfg.Solver == SolverJacobi {
			for _, p := range w.particles {
				p.BeforeSprings()
			}
			for _, p := range w.particles {
				p.AccumulateSprings(w.particles)
			}
		} else {
			for _, p := range w.particles {
				p.UpdateSprings(w.particles)
			}
		}
		for _, p := range w.particles {
			p.AfterSprings(w.bounds)
		}
	}
}

func (w *World) collide() {
	w.contacts = 0
	for _, p := range w.particles {
		p.BeforeCollision()
	}
	if !w.cfg.Collisions || w.param.DampCollision == 0 {
		return
	}

	for _, p := range w.particles {
		w.maxRadius = math.Max(w.maxRadius, p.RadiusCollision)
	}
	if need := 2 * w.maxRadius; w.grid.CellSize() < need {
		w.grid.Resize(need)
		nx, ny, nz := w.grid.Dims()
		dynamo.Logger().Debug("collision grid resized",
			"cell_size", w.grid.CellSize(), "nx", nx, "ny", ny, "nz", nz)
	}
	w.grid.Rebuild(w.particles)

	gen := w.gen
	w.grid.ForEachPair(func(a, b *physics.Particle) {
		if physics.ResolveCollision(a, b, gen) {
			w.contacts++
		}
	})
	for _, p := range w.particles {
		p.AfterCollision(w.bounds)
	}
}

// CheckFinite returns a SimulationError for the first particle whose
// position is NaN or infinite.
func (w *World) CheckFinite() error {
	for _, p := range w.particles {
		if !dynamo.IsFinite(p.Cur) {
			return &dynamo.SimulationError{
				Step:    w.steps,
				Time:    w.time,
				Index:   p.Index,
				Wrapped: dynamo.ErrUnstable,
			}
		}
	}
	return nil
}

// Snapshot fills s with the current state, growing its slice as needed.
func (w *World) Snapshot(s *Snapshot) {
	if cap(s.Particles) < len(w.particles) {
		s.Particles = make([]ParticleState, len(w.particles))
	}
	s.Particles = s.Particles[:len(w.particles)]
	s.Step = w.steps
	s.Time = w.time
	s.Contacts = w.contacts
	for i, p := range w.particles {
		s.Particles[i] = ParticleState{
			Index:  p.Index,
			Pos:    p.Cur,
			Vel:    p.Velocity(),
			Radius: p.Radius,
		}
	}
}
