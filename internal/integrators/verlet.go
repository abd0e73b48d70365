package integrators

import (
	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/physics"
)

// Integrator advances every particle by one time step and constrains it to
// the bounds.
type Integrator interface {
	Step(particles []*physics.Particle, b dynamo.Bounds, dt float64)
}

// minChunk is the smallest slice of particles handed to one goroutine.
const minChunk = 256

// Verlet is position Verlet over a particle arena. Each particle's update
// touches only that particle, so chunks run concurrently when Workers != 1.
type Verlet struct {
	// Workers bounds the goroutine count; 0 uses GOMAXPROCS.
	Workers int
}

func NewVerlet(workers int) *Verlet {
	return &Verlet{Workers: workers}
}

func (v *Verlet) Step(particles []*physics.Particle, b dynamo.Bounds, dt float64) {
	dynamo.ParallelFor(len(particles), minChunk, v.Workers, func(start, end int) {
		for _, p := range particles[start:end] {
			p.UpdatePosition(b, dt)
		}
	})
}

// Sequential integrates on the calling goroutine. Results are identical to
// Verlet; it exists for benchmarks and deterministic debugging.
type Sequential struct{}

func NewSequential() *Sequential {
	return &Sequential{}
}

func (Sequential) Step(particles []*physics.Particle, b dynamo.Bounds, dt float64) {
	for _, p := range particles {
		p.UpdatePosition(b, dt)
	}
}

// New returns the integrator for workers: Sequential for 1, Verlet otherwise.
func New(workers int) Integrator {
	if workers == 1 {
		return NewSequential()
	}
	return NewVerlet(workers)
}
