package physics

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/verlet/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// springEpsilon guards the length division for near-coincident endpoints.
const springEpsilon = 1e-9

// Spring is a distance constraint from its owning particle to Target.
type Spring struct {
	Target     int
	RestLength float64
	Stiffness  float64 // in [0, 1]
	// Inactive springs are kept so both endpoints know about the edge, but
	// only the active side applies the correction.
	Active bool
}

// UpdateForce returns the correction magnitude for the current separation.
// It is positive when the spring is compressed (endpoints pushed apart) and
// negative when stretched. Applied with shares summing to 2, stiffness 1
// restores RestLength in a single pass.
func (s Spring) UpdateForce(owner, target *Particle) float64 {
	d := r3.Norm(r3.Sub(target.Cur, owner.Cur))
	return 0.5 * s.Stiffness * (s.RestLength - d) / math.Max(d, springEpsilon)
}

// Strain returns |length - rest| / rest for the current separation.
func (s Spring) Strain(owner, target *Particle) float64 {
	if s.RestLength <= 0 {
		return 0
	}
	d := r3.Norm(r3.Sub(target.Cur, owner.Cur))
	return math.Abs(d-s.RestLength) / s.RestLength
}

func compareTarget(s Spring, target int) int {
	return cmp.Compare(s.Target, target)
}

// AddSpring inserts s keeping the list sorted by target index.
func (p *Particle) AddSpring(s Spring) error {
	if s.Target == p.Index {
		return fmt.Errorf("%w: spring from %d to itself", dynamo.ErrInvalidParticle, p.Index)
	}
	if s.Stiffness < 0 || s.Stiffness > 1 || math.IsNaN(s.Stiffness) {
		return fmt.Errorf("%w: stiffness %v outside [0,1]", dynamo.ErrInvalidConfig, s.Stiffness)
	}
	pos, found := slices.BinarySearchFunc(p.springs, s.Target, compareTarget)
	if found {
		return fmt.Errorf("%w: %d -> %d", dynamo.ErrDuplicateSpring, p.Index, s.Target)
	}
	p.springs = slices.Insert(p.springs, pos, s)
	return nil
}

// RemoveSpring deletes the spring to target and reports whether one existed.
func (p *Particle) RemoveSpring(target int) (Spring, bool) {
	for i, s := range p.springs {
		if s.Target == target {
			p.springs = slices.Delete(p.springs, i, i+1)
			return s, true
		}
	}
	return Spring{}, false
}

// HasSpring reports whether a spring to target exists.
func (p *Particle) HasSpring(target int) bool {
	_, found := slices.BinarySearchFunc(p.springs, target, compareTarget)
	return found
}

// SpringTo returns a pointer to the spring to target. The pointer is
// invalidated by the next AddSpring or RemoveSpring on p.
func (p *Particle) SpringTo(target int) (*Spring, bool) {
	i, found := slices.BinarySearchFunc(p.springs, target, compareTarget)
	if !found {
		return nil, false
	}
	return &p.springs[i], true
}

// Springs returns the sorted spring list. Callers must not modify it.
func (p *Particle) Springs() []Spring { return p.springs }

// SpringCount returns the number of springs p stores, active or not.
func (p *Particle) SpringCount() int { return len(p.springs) }

// UpdateSprings relaxes every active spring owned by p, moving both
// endpoints immediately (Gauss-Seidel).
func (p *Particle) UpdateSprings(particles []*Particle) {
	for _, s := range p.springs {
		if !s.Active {
			continue
		}
		q := particles[s.Target]
		delta := r3.Sub(q.Cur, p.Cur)
		f := s.UpdateForce(p, q)
		sp, sq := massShares(p, q)

		if p.EnableSprings {
			p.Cur = r3.Sub(p.Cur, r3.Scale(f*sp, delta))
		}
		if q.EnableSprings {
			q.Cur = r3.Add(q.Cur, r3.Scale(f*sq, delta))
		}
	}
}

// AccumulateSprings computes the same corrections as UpdateSprings but
// stores them in the endpoints' scratch accumulators (Jacobi). Positions do
// not change until AfterSprings.
func (p *Particle) AccumulateSprings(particles []*Particle) {
	for _, s := range p.springs {
		if !s.Active {
			continue
		}
		q := particles[s.Target]
		delta := r3.Sub(q.Cur, p.Cur)
		f := s.UpdateForce(p, q)
		sp, sq := massShares(p, q)

		if p.EnableSprings {
			p.spring = r3.Sub(p.spring, r3.Scale(f*sp, delta))
			p.springCount++
		}
		if q.EnableSprings {
			q.spring = r3.Add(q.spring, r3.Scale(f*sq, delta))
			q.springCount++
		}
	}
}

// BeforeSprings clears the spring accumulator.
func (p *Particle) BeforeSprings() {
	p.spring = r3.Vec{}
	p.springCount = 0
}

// AfterSprings applies the averaged accumulated correction, if any, and
// re-clamps to b.
func (p *Particle) AfterSprings(b dynamo.Bounds) {
	if p.springCount > 0 {
		p.Cur = r3.Add(p.Cur, r3.Scale(1/float64(p.springCount), p.spring))
	}
	p.UpdateBounds(b)
}
