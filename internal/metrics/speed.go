package metrics

import (
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MaxSpeed records the fastest particle speed seen during a run.
type MaxSpeed struct {
	name   string
	speeds []float64
	peak   float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(ps []*physics.Particle, t float64) {
	if len(ps) == 0 {
		return
	}
	m.speeds = speeds(ps, m.speeds)
	if v := floats.Max(m.speeds); v > m.peak {
		m.peak = v
	}
}

func (m *MaxSpeed) Value() float64 { return m.peak }

func (m *MaxSpeed) Reset() { m.peak = 0 }

// MeanSpeed is the average particle speed at the last observation.
type MeanSpeed struct {
	name   string
	speeds []float64
	value  float64
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(ps []*physics.Particle, t float64) {
	if len(ps) == 0 {
		m.value = 0
		return
	}
	m.speeds = speeds(ps, m.speeds)
	m.value = stat.Mean(m.speeds, nil)
}

func (m *MeanSpeed) Value() float64 { return m.value }

func (m *MeanSpeed) Reset() { m.value = 0 }

func speeds(ps []*physics.Particle, buf []float64) []float64 {
	buf = buf[:0]
	for _, p := range ps {
		buf = append(buf, p.Speed())
	}
	return buf
}
