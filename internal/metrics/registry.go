package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

var factories = map[string]func(gravity r3.Vec) sim.Metric{
	"kinetic_energy": func(r3.Vec) sim.Metric { return NewKineticEnergy() },
	"energy_drift":   func(g r3.Vec) sim.Metric { return NewEnergyDrift(g) },
	"max_speed":      func(r3.Vec) sim.Metric { return NewMaxSpeed() },
	"mean_speed":     func(r3.Vec) sim.Metric { return NewMeanSpeed() },
	"collisions":     func(r3.Vec) sim.Metric { return NewCollisionCount() },
	"spring_strain":  func(r3.Vec) sim.Metric { return NewSpringStrain() },
}

// New returns the metric registered under name.
func New(name string, gravity r3.Vec) (sim.Metric, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", dynamo.ErrInvalidConfig, name)
	}
	return f(gravity), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
