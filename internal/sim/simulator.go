package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/verlet/internal/dynamo"
)

// Simulator drives a World for a bounded run, feeding metrics every step and
// observers at every sample.
type Simulator struct {
	world     *World
	metrics   []Metric
	observers []Observer
	pool      *SnapshotPool
}

func New(w *World) *Simulator {
	return &Simulator{
		world:     w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) World() *World { return s.world }

func (s *Simulator) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := s.stepCount(cfg)
	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}
	samples := steps/every + 2

	result := &Result{
		Times:   make([]float64, 0, samples),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
		result.Series[m.Name()] = make([]float64, 0, samples)
	}
	if len(s.observers) > 0 {
		s.pool = NewSnapshotPool(s.world.Len())
	}

	w := s.world
	log := dynamo.Logger()
	log.Info("run started", "particles", w.Len(), "springs", w.SpringCount(), "steps", steps)
	start := time.Now()

	s.observe()
	s.sample(result)

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		w.Step()
		result.Contacts += w.Contacts()

		if cfg.ValidateState {
			if err := w.CheckFinite(); err != nil {
				log.Warn("state diverged", "step", w.StepCount(), "time", w.Time(), "err", err)
				result.Errors = append(result.Errors, err)
				s.finish(result)
				return result, err
			}
		}

		s.observe()
		if i%every == 0 || i == steps {
			s.sample(result)
		}
	}

	s.finish(result)
	log.Info("run finished",
		"steps", result.Steps,
		"contacts", result.Contacts,
		"elapsed", time.Since(start))
	return result, nil
}

func (s *Simulator) stepCount(cfg RunConfig) int {
	if cfg.Steps > 0 {
		return cfg.Steps
	}
	return int(math.Round(cfg.Duration / s.world.cfg.Dt))
}

func (s *Simulator) validateConfig(cfg RunConfig) error {
	if cfg.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Steps == 0 && (cfg.Duration <= 0 || math.IsNaN(cfg.Duration)) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval must be non-negative, got %d", dynamo.ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}

func (s *Simulator) observe() {
	ps := s.world.Particles()
	t := s.world.Time()
	for _, m := range s.metrics {
		m.Observe(ps, t)
	}
}

func (s *Simulator) sample(result *Result) {
	result.Times = append(result.Times, s.world.Time())
	for _, m := range s.metrics {
		result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
	}
	if len(s.observers) == 0 {
		return
	}
	snap := s.pool.Get()
	s.world.Snapshot(snap)
	for _, obs := range s.observers {
		obs.OnStep(snap)
	}
	s.pool.Put(snap)
}

func (s *Simulator) finish(result *Result) {
	result.Steps = s.world.StepCount()
	result.Time = s.world.Time()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback steps the world until the callback returns false, the
// context ends or the world diverges.
func (s *Simulator) RunWithCallback(ctx context.Context, callback func(w *World) bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s.world) {
			return nil
		}

		s.world.Step()
		s.observe()

		if err := s.world.CheckFinite(); err != nil {
			return err
		}
	}
}

// MetricValues returns the current value of every metric by name.
func (s *Simulator) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
