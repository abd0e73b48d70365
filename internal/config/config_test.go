package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene != "pile" {
		t.Errorf("expected scene pile, got %s", cfg.Scene)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("cloth", "soft")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Springs.Stiffness != 0.3 {
		t.Errorf("expected stiffness 0.3, got %f", cfg.Springs.Stiffness)
	}
	if cfg.Scene != "cloth" {
		t.Errorf("preset should set scene, got %s", cfg.Scene)
	}

	again := GetPreset("cloth", "soft")
	again.Springs.Stiffness = 0.9
	if cfg.Springs.Stiffness != 0.3 {
		t.Error("presets must not share state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("pile", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "dense")
	if cfg != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("pile")
	if len(presets) != 3 || presets[0] != "bouncy" {
		t.Errorf("expected sorted pile presets, got %v", presets)
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestPresetsValidate(t *testing.T) {
	for scene := range Presets {
		for _, name := range ListPresets(scene) {
			if err := GetPreset(scene, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", scene, name, err)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(*Config)
		wantErr error
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }, dynamo.ErrInvalidBounds},
		{"zero dt", func(c *Config) { c.Dt = 0 }, dynamo.ErrInvalidConfig},
		{"zero duration", func(c *Config) { c.Duration = 0 }, dynamo.ErrInvalidConfig},
		{"negative count", func(c *Config) { c.Particles.Count = -1 }, dynamo.ErrInvalidConfig},
		{"jitter one", func(c *Config) { c.Particles.RadiusJitter = 1 }, dynamo.ErrInvalidConfig},
		{"zero mass", func(c *Config) { c.Particles.Mass = 0 }, dynamo.ErrInvalidMass},
		{"stiffness", func(c *Config) { c.Springs.Stiffness = 2 }, dynamo.ErrInvalidConfig},
		{"solver", func(c *Config) { c.Physics.Solver = "sor" }, dynamo.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Scene = "gas"
	cfg.Physics.DampCollision = 0.5
	cfg.Physics.Solver = string(sim.SolverJacobi)
	cfg.World.Depth = 50

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Scene != "gas" || loaded.Physics.DampCollision != 0.5 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.Sim().Solver != sim.SolverJacobi {
		t.Errorf("solver = %q", loaded.Sim().Solver)
	}
	if loaded.Bounds().Planar() {
		t.Error("depth should make the box volumetric")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("scene: chain\nphysics:\n  damp_velocity: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "chain" || cfg.Physics.DampVelocity != 0.5 {
		t.Errorf("overrides not applied: %+v", cfg.Physics)
	}
	if cfg.Physics.DampCollision != 0.8 || cfg.Dt != DefaultDt {
		t.Error("unset fields should keep defaults")
	}
}

func TestParticleRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.World.Width, cfg.World.Height = 100, 100
	cfg.Particles.Count = 100
	cfg.Particles.FillFactor = math.Pi / 4

	// 100 discs covering pi/4 of 100x100 have radius 5.
	if r := cfg.ParticleRadius(); math.Abs(r-5) > 1e-12 {
		t.Errorf("radius = %v, want 5", r)
	}

	cfg.Particles.Radius = 2
	if r := cfg.ParticleRadius(); r != 2 {
		t.Errorf("explicit radius ignored: %v", r)
	}
}
