// Package forces supplies the external accelerations applied to particles
// at the start of every step.
package forces

import (
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Force contributes to the acceleration accumulator of each particle.
// Apply must not move particles.
type Force interface {
	Name() string
	Apply(particles []*physics.Particle, t float64)
}

// Gravity is a uniform, mass-independent acceleration.
type Gravity struct {
	G r3.Vec
}

func NewGravity(g r3.Vec) *Gravity {
	return &Gravity{G: g}
}

func (g *Gravity) Name() string { return "gravity" }

func (g *Gravity) Apply(particles []*physics.Particle, t float64) {
	for _, p := range particles {
		p.AddGravity(g.G)
	}
}

// Drag opposes the implicit velocity with force -Coeff * v.
type Drag struct {
	Coeff float64
}

func NewDrag(coeff float64) *Drag {
	return &Drag{Coeff: coeff}
}

func (d *Drag) Name() string { return "drag" }

func (d *Drag) Apply(particles []*physics.Particle, t float64) {
	for _, p := range particles {
		p.AddForce(r3.Scale(-d.Coeff, p.Velocity()))
	}
}

// Attractor pulls particles within Radius toward Center with a force that
// grows linearly with distance. A zero Radius reaches every particle; a
// negative Strength repels.
type Attractor struct {
	Center   r3.Vec
	Strength float64
	Radius   float64
}

func NewAttractor(center r3.Vec, strength, radius float64) *Attractor {
	return &Attractor{Center: center, Strength: strength, Radius: radius}
}

func (a *Attractor) Name() string { return "attractor" }

func (a *Attractor) Apply(particles []*physics.Particle, t float64) {
	r2 := a.Radius * a.Radius
	for _, p := range particles {
		d := r3.Sub(a.Center, p.Cur)
		if a.Radius > 0 && r3.Norm2(d) > r2 {
			continue
		}
		p.AddForce(r3.Scale(a.Strength, d))
	}
}

// Set applies a list of forces in order.
type Set []Force

func (s Set) Name() string { return "set" }

func (s Set) Apply(particles []*physics.Particle, t float64) {
	for _, f := range s {
		f.Apply(particles, t)
	}
}
