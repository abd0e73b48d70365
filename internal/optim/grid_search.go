package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/experiment"
)

// Params maps a sweepable parameter name to its setter.
var Params = map[string]func(c *config.Config, v float64){
	"damp_bounds":    func(c *config.Config, v float64) { c.Physics.DampBounds = v },
	"damp_collision": func(c *config.Config, v float64) { c.Physics.DampCollision = v },
	"damp_velocity":  func(c *config.Config, v float64) { c.Physics.DampVelocity = v },
	"gravity":        func(c *config.Config, v float64) { c.Physics.Gravity = v },
	"iterations":     func(c *config.Config, v float64) { c.Physics.SpringIterations = int(v) },
	"stiffness":      func(c *config.Config, v float64) { c.Springs.Stiffness = v },
	"fill":           func(c *config.Config, v float64) { c.Particles.FillFactor = v },
	"dt":             func(c *config.Config, v float64) { c.Dt = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(Params))
	for name := range Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d params but %d ranges", dynamo.ErrInvalidConfig, len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := Params[name]; !ok {
			return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidConfig, name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: empty range for %q", dynamo.ErrInvalidConfig, name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs one experiment per grid point, each on a copy of base, and
// returns the point with the smallest final value of metricName. Trials that
// fail or diverge are reported but never win.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	registry *experiment.Registry,
	metricName string,
) (*Trial, []Trial, error) {
	var trials []Trial
	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		trials = append(trials, g.runTrial(ctx, base, registry, metricName, params))
	})
	if err != nil {
		return nil, trials, err
	}

	var best *Trial
	for i := range trials {
		t := &trials[i]
		if t.Err != nil || math.IsNaN(t.Value) {
			continue
		}
		if best == nil || t.Value < best.Value {
			best = t
		}
	}
	if best == nil {
		return nil, trials, fmt.Errorf("no successful trial for metric %q", metricName)
	}
	return best, trials, nil
}

func (g *GridSearch) runTrial(
	ctx context.Context,
	base *config.Config,
	registry *experiment.Registry,
	metricName string,
	params map[string]float64,
) Trial {
	trial := Trial{Params: params}

	cfg := *base
	for name, v := range params {
		Params[name](&cfg, v)
	}

	exp := experiment.New(&cfg, registry)
	if err := exp.Setup(nil); err != nil {
		trial.Err = err
		return trial
	}
	result, err := exp.Run(ctx)
	if err != nil {
		trial.Err = err
		return trial
	}

	val, ok := result.Metrics[metricName]
	if !ok {
		trial.Err = fmt.Errorf("metric %q not recorded", metricName)
		return trial
	}
	trial.Value = val

	dynamo.Logger().Debug("trial finished", "params", params, metricName, val)
	return trial
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
