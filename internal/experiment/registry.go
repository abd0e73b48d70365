package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/metrics"
	"github.com/san-kum/verlet/internal/sim"
)

// Builder populates an empty world from cfg.
type Builder func(w *sim.World, cfg *config.Config, rng *rand.Rand) error

type Scene struct {
	Name        string
	Description string
	Build       Builder
	// Springs marks scenes whose strain is worth tracking.
	Springs bool
}

type Registry struct {
	scenes map[string]Scene
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]Scene)}

	r.Register(Scene{Name: "pile", Description: "particles dropped into a box under gravity", Build: buildPile})
	r.Register(Scene{Name: "gas", Description: "weightless particles bouncing elastically", Build: buildGas})
	r.Register(Scene{Name: "cloth", Description: "spring lattice hanging from its top row", Build: buildCloth, Springs: true})
	r.Register(Scene{Name: "chain", Description: "pendulum chain released from horizontal", Build: buildChain, Springs: true})
	r.Register(Scene{Name: "flow", Description: "particles carried by a vortex flow field", Build: buildFlow})

	return r
}

func (r *Registry) Register(s Scene) {
	r.scenes[s.Name] = s
}

func (r *Registry) GetScene(name string) (Scene, error) {
	s, ok := r.scenes[name]
	if !ok {
		return Scene{}, fmt.Errorf("unknown scene: %s", name)
	}
	return s, nil
}

func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(scene string, cfg *config.Config) []sim.Metric {
	ms := []sim.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewEnergyDrift(cfg.GravityVec()),
		metrics.NewMaxSpeed(),
		metrics.NewCollisionCount(),
	}
	if s, ok := r.scenes[scene]; ok && s.Springs {
		ms = append(ms, metrics.NewSpringStrain())
	}
	return ms
}
