package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrInvalidParticle indicates a particle that cannot be constructed.
	ErrInvalidParticle = errors.New("dynamo: invalid particle")

	// ErrInvalidMass indicates a non-positive or non-finite mass.
	ErrInvalidMass = errors.New("dynamo: mass must be positive and finite")

	// ErrInvalidRadius indicates a negative or non-finite radius.
	ErrInvalidRadius = errors.New("dynamo: radius must be non-negative and finite")

	// ErrDuplicateSpring indicates a spring to a target that is already connected.
	ErrDuplicateSpring = errors.New("dynamo: spring to target already exists")

	// ErrUnknownParticle indicates an index outside the particle arena.
	ErrUnknownParticle = errors.New("dynamo: unknown particle index")

	// ErrInvalidBounds indicates bounds whose min exceeds max.
	ErrInvalidBounds = errors.New("dynamo: invalid bounds")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrUnstable indicates the simulation produced NaN or Inf positions.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")
)

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    uint64
	Time    float64
	Index   int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) particle %d: %v", e.Step, e.Time, e.Index, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
