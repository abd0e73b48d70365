package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/verlet/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinRadius is the floor applied to both radii.
const MinRadius = 0.1

// Param holds damping factors shared by reference between particles.
type Param struct {
	DampBounds    float64 `yaml:"damp_bounds"`
	DampCollision float64 `yaml:"damp_collision"`
	DampVelocity  float64 `yaml:"damp_velocity"`
}

// DefaultParam returns a lossless parameter block.
func DefaultParam() *Param {
	return &Param{
		DampBounds:    1,
		DampCollision: 1,
		DampVelocity:  1,
	}
}

// Particle is the unit of simulation state.
type Particle struct {
	// Index must be unique and match the particle's arena offset.
	Index int

	Cur  r3.Vec // current position
	Prev r3.Vec // previous position
	Acc  r3.Vec // acceleration, cleared every step

	Radius          float64
	RadiusCollision float64
	Mass            float64

	EnableCollisions bool
	EnableSprings    bool
	EnableForces     bool

	// Particles sharing a group never collide with each other.
	CollisionGroup int

	param   *Param
	springs []Spring

	collision      r3.Vec
	collisionCount int
	pairs          int

	spring      r3.Vec
	springCount int

	visitor  int
	visitGen uint64
}

// NewParticle creates a particle at rest at pos. A nil param gets a private
// default block.
func NewParticle(index int, pos r3.Vec, radius float64, param *Param) (*Particle, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: negative index %d", dynamo.ErrInvalidParticle, index)
	}
	if !dynamo.IsFinite(pos) {
		return nil, fmt.Errorf("%w: non-finite position %v", dynamo.ErrInvalidParticle, pos)
	}

	p := &Particle{
		Index:            index,
		Mass:             1,
		EnableCollisions: true,
		EnableSprings:    true,
		EnableForces:     true,
		CollisionGroup:   index,
		param:            DefaultParam(),
		visitor:          -1,
	}
	if err := p.SetRadius(radius); err != nil {
		return nil, err
	}
	p.SetParam(param)
	p.SetPosition(pos)
	return p, nil
}

// SetPosition teleports the particle and zeroes its velocity.
func (p *Particle) SetPosition(pos r3.Vec) {
	p.Cur = pos
	p.Prev = pos
}

// SetVelocity sets the derived velocity by moving Prev.
func (p *Particle) SetVelocity(v r3.Vec) {
	p.Prev = r3.Sub(p.Cur, v)
}

// SetRadius sets both the display and collision radius.
func (p *Particle) SetRadius(r float64) error {
	if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidRadius, r)
	}
	p.Radius = math.Max(r, MinRadius)
	p.RadiusCollision = p.Radius
	return nil
}

// SetRadiusCollision overrides the collision radius only.
func (p *Particle) SetRadiusCollision(r float64) error {
	if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidRadius, r)
	}
	p.RadiusCollision = math.Max(r, MinRadius)
	return nil
}

// SetMass rejects non-positive masses instead of clamping them.
func (p *Particle) SetMass(m float64) error {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidMass, m)
	}
	p.Mass = m
	return nil
}

// SetParam shares param with this particle. nil is ignored.
func (p *Particle) SetParam(param *Param) {
	if param != nil {
		p.param = param
	}
}

// Param returns the parameter block the particle reads from.
func (p *Particle) Param() *Param { return p.param }

// SetCollisionGroup moves p into group id. Particles sharing a group never
// collide with each other.
func (p *Particle) SetCollisionGroup(id int) { p.CollisionGroup = id }

// Enable sets all three phase flags at once.
func (p *Particle) Enable(collisions, springs, forces bool) {
	p.EnableCollisions = collisions
	p.EnableSprings = springs
	p.EnableForces = forces
}

// Velocity returns the implicit velocity Cur - Prev.
func (p *Particle) Velocity() r3.Vec {
	return r3.Sub(p.Cur, p.Prev)
}

func (p *Particle) Speed() float64 {
	return r3.Norm(p.Velocity())
}

// MoveTo drags the particle a fraction of the way toward target. The
// displacement becomes the particle's velocity.
func (p *Particle) MoveTo(target r3.Vec, damping float64) {
	p.Prev = p.Cur
	p.Cur = r3.Add(p.Cur, r3.Scale(damping, r3.Sub(target, p.Cur)))
}

// AddForce accumulates f / Mass.
func (p *Particle) AddForce(f r3.Vec) {
	p.Acc = r3.Add(p.Acc, r3.Scale(1/p.Mass, f))
}

// AddGravity accumulates g independent of mass.
func (p *Particle) AddGravity(g r3.Vec) {
	p.Acc = r3.Add(p.Acc, g)
}

// UpdatePosition advances one Verlet step and constrains the result to b.
// Damping scales the displacement, not a stored velocity. The accumulator is
// cleared even when forces are disabled.
func (p *Particle) UpdatePosition(b dynamo.Bounds, dt float64) {
	if p.EnableForces {
		v := r3.Scale(p.param.DampVelocity, r3.Sub(p.Cur, p.Prev))
		p.Prev = p.Cur
		p.Cur = r3.Add(p.Cur, r3.Add(v, r3.Scale(0.5*dt*dt, p.Acc)))
		p.UpdateBounds(b)
	}
	p.Acc = r3.Vec{}
}

// UpdateBounds reflects the particle off any wall its extent crosses. Axes
// are handled one after another, so a corner hit corrects two axes.
// Particles with collisions disabled pass through walls.
func (p *Particle) UpdateBounds(b dynamo.Bounds) {
	if !p.EnableCollisions {
		return
	}
	damp := p.param.DampBounds
	r := p.Radius

	if p.Cur.X-r < b.Min.X {
		p.reflect(dynamo.AxisX, b.Min.X+r, damp)
	}
	if p.Cur.X+r > b.Max.X {
		p.reflect(dynamo.AxisX, b.Max.X-r, damp)
	}
	if p.Cur.Y-r < b.Min.Y {
		p.reflect(dynamo.AxisY, b.Min.Y+r, damp)
	}
	if p.Cur.Y+r > b.Max.Y {
		p.reflect(dynamo.AxisY, b.Max.Y-r, damp)
	}
	if b.Planar() {
		return
	}
	if p.Cur.Z-r < b.Min.Z {
		p.reflect(dynamo.AxisZ, b.Min.Z+r, damp)
	}
	if p.Cur.Z+r > b.Max.Z {
		p.reflect(dynamo.AxisZ, b.Max.Z-r, damp)
	}
}

// reflect snaps the particle onto the wall and rewrites Prev so the velocity
// along axis is negated; every component is scaled by damp.
func (p *Particle) reflect(axis dynamo.Axis, wall, damp float64) {
	v := r3.Sub(p.Cur, p.Prev)
	switch axis {
	case dynamo.AxisX:
		p.Cur.X = wall
		v.X = -v.X
	case dynamo.AxisY:
		p.Cur.Y = wall
		v.Y = -v.Y
	case dynamo.AxisZ:
		p.Cur.Z = wall
		v.Z = -v.Z
	}
	p.Prev = r3.Sub(p.Cur, r3.Scale(damp, v))
}

// massShares returns the correction factors for a and b. They sum to 2 and
// the lighter particle takes the larger share.
func massShares(a, b *Particle) (float64, float64) {
	sa := 2 * b.Mass / (a.Mass + b.Mass)
	return sa, 2 - sa
}
