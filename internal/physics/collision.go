package physics

import (
	"github.com/san-kum/verlet/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ResolveCollision runs the narrow phase for the pair (a, b) during sweep
// gen. Displacements go into the scratch accumulators of whichever sides have
// collisions enabled; positions change only in AfterCollision. It returns
// true when the pair overlapped.
//
// b remembers a as its last visitor for gen, so a repeated offer of the same
// pair within one sweep is ignored.
func ResolveCollision(a, b *Particle, gen uint64) bool {
	if a == b || a.CollisionGroup == b.CollisionGroup {
		return false
	}
	if !a.EnableCollisions && !b.EnableCollisions {
		return false
	}
	if b.visitor == a.Index && b.visitGen == gen {
		return false
	}
	b.visitor, b.visitGen = a.Index, gen

	delta := r3.Sub(b.Cur, a.Cur)
	distSq := r3.Norm2(delta)
	minDist := a.RadiusCollision + b.RadiusCollision
	minDistSq := minDist * minDist
	if !(distSq < minDistSq) {
		return false
	}

	// The +minDistSq term keeps the denominator away from zero for
	// coincident centers.
	f := (minDistSq/(distSq+minDistSq) - 0.5) * a.param.DampCollision
	sa, sb := massShares(a, b)

	a.pairs++
	if a.EnableCollisions {
		a.collision = r3.Sub(a.collision, r3.Scale(f*sa, delta))
		a.collisionCount++
	}
	if b.EnableCollisions {
		b.collision = r3.Add(b.collision, r3.Scale(f*sb, delta))
		b.collisionCount++
	}
	return true
}

// BeforeCollision clears the collision accumulator and counters.
func (p *Particle) BeforeCollision() {
	p.collision = r3.Vec{}
	p.collisionCount = 0
	p.pairs = 0
}

// AfterCollision applies the accumulated displacement once and re-clamps.
func (p *Particle) AfterCollision(b dynamo.Bounds) {
	p.Cur = r3.Add(p.Cur, p.collision)
	p.UpdateBounds(b)
}

// CollisionCount returns the contacts resolved since BeforeCollision.
func (p *Particle) CollisionCount() int { return p.collisionCount }

// PairCount returns the overlapping pairs p was the first member of since
// BeforeCollision. Summed over all particles it counts every pair once, even
// when only one side moves.
func (p *Particle) PairCount() int { return p.pairs }

// CollisionDisplacement returns the pending collision displacement.
func (p *Particle) CollisionDisplacement() r3.Vec { return p.collision }
