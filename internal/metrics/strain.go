package metrics

import (
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpringStrain reports the mean relative deviation from rest length over
// all active springs at the last observation.
type SpringStrain struct {
	name    string
	strains []float64
	mean    float64
	peak    float64
}

func NewSpringStrain() *SpringStrain {
	return &SpringStrain{name: "spring_strain"}
}

func (s *SpringStrain) Name() string { return s.name }

func (s *SpringStrain) Observe(ps []*physics.Particle, t float64) {
	s.strains = s.strains[:0]
	for _, p := range ps {
		for _, sp := range p.Springs() {
			if !sp.Active || sp.Target < 0 || sp.Target >= len(ps) {
				continue
			}
			s.strains = append(s.strains, sp.Strain(p, ps[sp.Target]))
		}
	}
	if len(s.strains) == 0 {
		s.mean = 0
		return
	}
	s.mean = stat.Mean(s.strains, nil)
	if v := floats.Max(s.strains); v > s.peak {
		s.peak = v
	}
}

func (s *SpringStrain) Value() float64 { return s.mean }

// Peak returns the largest single-spring strain seen since Reset.
func (s *SpringStrain) Peak() float64 { return s.peak }

func (s *SpringStrain) Reset() {
	s.mean = 0
	s.peak = 0
}
