package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/sim"
)

type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	simulator  *sim.Simulator
	randSource *rand.Rand
}

func New(cfg *config.Config, registry *Registry) *Experiment {
	return &Experiment{
		cfg:        cfg,
		registry:   registry,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Setup validates the config, builds the scene and attaches metrics. A nil
// metrics slice uses the scene defaults.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	w, err := BuildWorld(e.cfg, e.registry, e.randSource)
	if err != nil {
		return err
	}
	if metrics == nil {
		metrics = e.registry.DefaultMetrics(e.cfg.Scene, e.cfg)
	}

	e.simulator = sim.New(w)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Run())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// BuildWorld creates a world for cfg and populates it with cfg.Scene.
func BuildWorld(cfg *config.Config, registry *Registry, rng *rand.Rand) (*sim.World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scene, err := registry.GetScene(cfg.Scene)
	if err != nil {
		return nil, err
	}

	w, err := sim.NewWorld(cfg.Bounds(), cfg.Param(), cfg.Sim())
	if err != nil {
		return nil, err
	}
	if err := scene.Build(w, cfg, rng); err != nil {
		return nil, fmt.Errorf("build %s: %w", scene.Name, err)
	}

	dynamo.Logger().Debug("scene built",
		"scene", scene.Name,
		"particles", w.Len(),
		"springs", w.SpringCount(),
		"max_radius", w.MaxRadius())
	return w, nil
}

// RunEnsemble runs cfg once per seed in [cfg.Seed, cfg.Seed+runs) with at
// most limit runs in flight.
func RunEnsemble(ctx context.Context, cfg *config.Config, registry *Registry, runs, limit int) ([]*sim.Result, error) {
	build := func(seed int64) (*sim.Simulator, error) {
		c := *cfg
		c.Seed = seed
		e := New(&c, registry)
		if err := e.Setup(nil); err != nil {
			return nil, err
		}
		return e.GetSimulator(), nil
	}

	ens := sim.NewEnsemble(build, runs, cfg.Seed)
	ens.Limit = limit
	return ens.Run(ctx, cfg.Run())
}
