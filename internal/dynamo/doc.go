// Package dynamo provides the primitives shared by every simulation package.
//
// The package defines the small set of types that the particle engine is
// built from:
//
//   - [Bounds]: axis-aligned simulation box, planar (2D) or volumetric (3D)
//   - sentinel errors and [SimulationError] for failed runs
//   - [ParallelFor]: chunked fan-out used by per-particle stages
//   - [SetLogger] / [Logger]: the engine-wide structured logger
//
// Vectors are gonum's [r3.Vec]. Planar scenes keep Z at zero and use
// bounds with zero depth.
//
// # Example
//
//	b := dynamo.NewBounds2D(0, 0, 800, 600)
//	w, _ := sim.NewWorld(b, physics.DefaultParam(), sim.DefaultConfig())
//	p, _ := w.AddParticle(r3.Vec{X: 100, Y: 100}, 4)
//	w.Step()
//
// # Thread Safety
//
// Nothing in the engine is safe for concurrent mutation. [ParallelFor] is
// only used where each worker touches a disjoint set of particles.
package dynamo
