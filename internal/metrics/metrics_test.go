package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

func movingParticles(t *testing.T, vels ...r3.Vec) []*physics.Particle {
	t.Helper()
	ps := make([]*physics.Particle, len(vels))
	for i, v := range vels {
		p, err := physics.NewParticle(i, r3.Vec{X: float64(i) * 10}, 1, nil)
		if err != nil {
			t.Fatal(err)
		}
		p.SetVelocity(v)
		ps[i] = p
	}
	return ps
}

func TestKineticEnergy(t *testing.T) {
	ps := movingParticles(t, r3.Vec{X: 3, Y: 4}, r3.Vec{X: 1})
	_ = ps[1].SetMass(4)

	m := NewKineticEnergy()
	m.Observe(ps, 0)

	// 0.5*1*25 + 0.5*4*1
	if math.Abs(m.Value()-14.5) > 1e-12 {
		t.Errorf("expected 14.5, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	ps := movingParticles(t, r3.Vec{X: 2})
	m := NewEnergyDrift(r3.Vec{})

	m.Observe(ps, 0)
	if m.Value() != 0 {
		t.Errorf("first observation should have no drift, got %v", m.Value())
	}

	ps[0].SetVelocity(r3.Vec{X: 1})
	m.Observe(ps, 1)
	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected drift 0.75, got %v", m.Value())
	}

	ps[0].SetVelocity(r3.Vec{X: 2})
	m.Observe(ps, 2)
	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("drift should keep its maximum, got %v", m.Value())
	}
}

func TestEnergyDrift_Potential(t *testing.T) {
	ps := movingParticles(t, r3.Vec{})
	ps[0].SetPosition(r3.Vec{Y: 10})
	m := NewEnergyDrift(r3.Vec{Y: -1})

	m.Observe(ps, 0)
	if math.Abs(m.Current()-10) > 1e-12 {
		t.Fatalf("expected potential 10, got %v", m.Current())
	}

	// Falling 2 units while gaining speed 2 conserves m*g*h + m*v^2/2.
	ps[0].SetPosition(r3.Vec{Y: 8})
	ps[0].SetVelocity(r3.Vec{Y: -2})
	m.Observe(ps, 1)
	if m.Value() > 1e-12 {
		t.Errorf("expected no drift, got %v", m.Value())
	}
}

func TestSpeedMetrics(t *testing.T) {
	ps := movingParticles(t, r3.Vec{X: 1}, r3.Vec{Y: 3}, r3.Vec{X: 2})

	peak := NewMaxSpeed()
	mean := NewMeanSpeed()
	peak.Observe(ps, 0)
	mean.Observe(ps, 0)

	if peak.Value() != 3 {
		t.Errorf("max speed = %v, want 3", peak.Value())
	}
	if math.Abs(mean.Value()-2) > 1e-12 {
		t.Errorf("mean speed = %v, want 2", mean.Value())
	}

	ps[1].SetVelocity(r3.Vec{})
	peak.Observe(ps, 1)
	if peak.Value() != 3 {
		t.Error("max speed must not decrease")
	}

	peak.Observe(nil, 2)
	mean.Observe(nil, 2)
	if mean.Value() != 0 {
		t.Error("empty arena should have zero mean speed")
	}
}

func TestCollisionCount(t *testing.T) {
	a, _ := physics.NewParticle(0, r3.Vec{}, 1, nil)
	b, _ := physics.NewParticle(1, r3.Vec{X: 1}, 1, nil)
	ps := []*physics.Particle{a, b}

	m := NewCollisionCount()
	for _, p := range ps {
		p.BeforeCollision()
	}
	physics.ResolveCollision(a, b, 1)
	m.Observe(ps, 0)

	for _, p := range ps {
		p.BeforeCollision()
	}
	m.Observe(ps, 1)

	if m.Last() != 0 {
		t.Errorf("last = %v, want 0", m.Last())
	}
	if m.Value() != 0.5 {
		t.Errorf("mean contacts = %v, want 0.5", m.Value())
	}
}

func TestCollisionCount_OneSided(t *testing.T) {
	a, _ := physics.NewParticle(0, r3.Vec{}, 1, nil)
	b, _ := physics.NewParticle(1, r3.Vec{X: 1}, 1, nil)
	b.EnableCollisions = false
	ps := []*physics.Particle{a, b}

	for _, p := range ps {
		p.BeforeCollision()
	}
	if !physics.ResolveCollision(a, b, 1) {
		t.Fatal("overlapping pair was not resolved")
	}

	m := NewCollisionCount()
	m.Observe(ps, 0)
	if m.Last() != 1 {
		t.Errorf("last = %v, want 1", m.Last())
	}
}

func TestSpringStrain(t *testing.T) {
	ps := movingParticles(t, r3.Vec{}, r3.Vec{}, r3.Vec{})
	_ = ps[0].AddSpring(physics.Spring{Target: 1, RestLength: 5, Stiffness: 1, Active: true})
	_ = ps[1].AddSpring(physics.Spring{Target: 2, RestLength: 10, Stiffness: 1, Active: true})
	_ = ps[2].AddSpring(physics.Spring{Target: 1, RestLength: 1, Stiffness: 1})

	m := NewSpringStrain()
	m.Observe(ps, 0)

	// lengths are 10 and 10: strains 1 and 0; the inactive mirror is ignored.
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("mean strain = %v, want 0.5", m.Value())
	}
	if math.Abs(m.Peak()-1) > 1e-12 {
		t.Errorf("peak strain = %v, want 1", m.Peak())
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name, r3.Vec{Y: -1})
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("metric %q reports name %q", name, m.Name())
		}
	}

	if _, err := New("entropy", r3.Vec{}); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
