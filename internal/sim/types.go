package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Solver selects how spring corrections are applied within one pass.
type Solver string

const (
	// SolverGaussSeidel moves endpoints as soon as each spring is visited.
	SolverGaussSeidel Solver = "gauss-seidel"
	// SolverJacobi accumulates every correction and applies the average.
	SolverJacobi Solver = "jacobi"
)

// Config controls the step pipeline of a World.
type Config struct {
	Dt               float64
	SpringIterations int
	Solver           Solver
	Collisions       bool
	// Workers bounds integration goroutines; 1 integrates inline, 0 uses
	// GOMAXPROCS.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Dt:               1,
		SpringIterations: 8,
		Solver:           SolverGaussSeidel,
		Collisions:       true,
		Workers:          1,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrInvalidConfig, c.Dt)
	}
	if c.SpringIterations < 0 {
		return fmt.Errorf("%w: spring iterations must be non-negative, got %d", dynamo.ErrInvalidConfig, c.SpringIterations)
	}
	switch c.Solver {
	case SolverGaussSeidel, SolverJacobi:
	default:
		return fmt.Errorf("%w: unknown solver %q", dynamo.ErrInvalidConfig, c.Solver)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(particles []*physics.Particle, t float64)
	Value() float64
	Reset()
}

// Observer receives a snapshot at every sampled step. The snapshot is
// recycled after OnStep returns; observers that keep it must Clone it.
type Observer interface {
	OnStep(s *Snapshot)
}

// ParticleState is the externally visible state of one particle.
type ParticleState struct {
	Index  int
	Pos    r3.Vec
	Vel    r3.Vec
	Radius float64
}

// Snapshot is the world state at one step.
type Snapshot struct {
	Step      uint64
	Time      float64
	Contacts  int
	Particles []ParticleState
}

func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Particles = make([]ParticleState, len(s.Particles))
	copy(c.Particles, s.Particles)
	return &c
}

// RunConfig bounds a Simulator run. Steps wins over Duration when both are
// set.
type RunConfig struct {
	Duration      float64
	Steps         int
	SampleEvery   int
	ValidateState bool
}

// Result is what a run produced.
type Result struct {
	Steps    uint64
	Time     float64
	Contacts int

	// Times holds the sampled times; Series holds one value per sample per
	// metric.
	Times  []float64
	Series map[string][]float64

	// Metrics holds the final value of every metric.
	Metrics map[string]float64
	Errors  []error
}
