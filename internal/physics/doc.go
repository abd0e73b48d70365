// Package physics provides the particle entity and its constraints.
//
// A [Particle] carries its current and previous position, an acceleration
// accumulator, and physical parameters. Velocity is never stored; it is
// always Cur - Prev. The package implements the three per-particle phases of
// a simulation step:
//
//   - [Particle.UpdatePosition]: semi-implicit Verlet integration plus
//     axis-local boundary reflection
//   - [Particle.UpdateSprings]: positional (PBD-style) spring relaxation over
//     the particle's index-sorted spring list
//   - [ResolveCollision]: pairwise narrow phase writing into per-particle
//     scratch accumulators, applied once by [Particle.AfterCollision]
//
// Particles that share a [Param] block see every change made to it; that is
// how global damping is tuned while a simulation runs.
package physics
