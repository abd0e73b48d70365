package metrics

import (
	"math"

	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// kinetic returns the total kinetic energy using the implicit velocity.
// Velocities are per step, so the result is in mass * (length/step)^2.
func kinetic(ps []*physics.Particle, buf []float64) ([]float64, float64) {
	buf = buf[:0]
	for _, p := range ps {
		buf = append(buf, 0.5*p.Mass*r3.Norm2(p.Velocity()))
	}
	return buf, floats.Sum(buf)
}

// potential returns the energy of every particle in the uniform field g,
// measured from the origin.
func potential(ps []*physics.Particle, g r3.Vec) float64 {
	var e float64
	for _, p := range ps {
		e -= p.Mass * r3.Dot(g, p.Cur)
	}
	return e
}

type KineticEnergy struct {
	name  string
	buf   []float64
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(ps []*physics.Particle, t float64) {
	k.buf, k.value = kinetic(ps, k.buf)
}

func (k *KineticEnergy) Value() float64 { return k.value }

func (k *KineticEnergy) Reset() { k.value = 0 }

// EnergyDrift tracks the largest relative change of mechanical energy from
// the first observation. Gravity must match the world's gravity force for
// the potential term to be meaningful; the zero vector tracks kinetic
// energy only.
type EnergyDrift struct {
	name          string
	gravity       r3.Vec
	buf           []float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity r3.Vec) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(ps []*physics.Particle, t float64) {
	var ke float64
	e.buf, ke = kinetic(ps, e.buf)
	energy := ke + potential(ps, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current returns the mechanical energy at the last observation.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
