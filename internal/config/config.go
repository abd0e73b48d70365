package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/verlet/internal/dynamo"
	"github.com/san-kum/verlet/internal/physics"
	"github.com/san-kum/verlet/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0
	DefaultDuration    = 600.0
	DefaultWidth       = 200.0
	DefaultHeight      = 200.0
	DefaultCount       = 400
	DefaultFillFactor  = 0.7
	DefaultGravity     = 0.025
	DefaultIterations  = 8
	DefaultStiffness   = 1.0
	DefaultSampleEvery = 10
)

type Config struct {
	Scene         string         `yaml:"scene"`
	Dt            float64        `yaml:"dt"`
	Duration      float64        `yaml:"duration"`
	Seed          int64          `yaml:"seed"`
	SampleEvery   int            `yaml:"sample_every"`
	ValidateState bool           `yaml:"validate_state"`
	World         WorldConfig    `yaml:"world"`
	Particles     ParticleConfig `yaml:"particles"`
	Physics       PhysicsConfig  `yaml:"physics"`
	Springs       SpringConfig   `yaml:"springs"`
	Flow          FlowConfig     `yaml:"flow"`
}

// WorldConfig sizes the box. Depth 0 gives a planar world.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
}

// ParticleConfig describes the initial population. When Radius is 0 it is
// derived from FillFactor: the share of the box area the particles cover.
type ParticleConfig struct {
	Count        int     `yaml:"count"`
	Radius       float64 `yaml:"radius"`
	FillFactor   float64 `yaml:"fill_factor"`
	RadiusJitter float64 `yaml:"radius_jitter"`
	Mass         float64 `yaml:"mass"`
	Speed        float64 `yaml:"speed"`
}

type PhysicsConfig struct {
	physics.Param    `yaml:",inline"`
	Gravity          float64 `yaml:"gravity"`
	SpringIterations int     `yaml:"spring_iterations"`
	Solver           string  `yaml:"solver"`
	Collisions       bool    `yaml:"collisions"`
	Workers          int     `yaml:"workers"`
}

type SpringConfig struct {
	Stiffness float64 `yaml:"stiffness"`
	Columns   int     `yaml:"columns"`
}

type FlowConfig struct {
	Mult  float64 `yaml:"mult"`
	Cells int     `yaml:"cells"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:       "pile",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		World: WorldConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Particles: ParticleConfig{
			Count:      DefaultCount,
			FillFactor: DefaultFillFactor,
			Mass:       1,
		},
		Physics: PhysicsConfig{
			Param: physics.Param{
				DampBounds:    1,
				DampCollision: 0.8,
				DampVelocity:  0.9,
			},
			Gravity:          DefaultGravity,
			SpringIterations: DefaultIterations,
			Solver:           string(sim.SolverGaussSeidel),
			Collisions:       true,
			Workers:          1,
		},
		Springs: SpringConfig{
			Stiffness: DefaultStiffness,
		},
		Flow: FlowConfig{
			Mult:  0.4,
			Cells: 16,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Bounds().Validate(); err != nil {
		return err
	}
	if err := c.Sim().Validate(); err != nil {
		return err
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", dynamo.ErrInvalidConfig, c.Duration)
	}
	if c.Particles.Count < 0 {
		return fmt.Errorf("%w: particle count must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Particles.Count)
	}
	if c.Particles.Radius < 0 || c.Particles.FillFactor < 0 {
		return fmt.Errorf("%w: radius and fill factor must be non-negative", dynamo.ErrInvalidConfig)
	}
	if c.Particles.RadiusJitter < 0 || c.Particles.RadiusJitter >= 1 {
		return fmt.Errorf("%w: radius jitter must be in [0,1), got %v", dynamo.ErrInvalidConfig, c.Particles.RadiusJitter)
	}
	if c.Particles.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %v", dynamo.ErrInvalidMass, c.Particles.Mass)
	}
	if c.Springs.Stiffness < 0 || c.Springs.Stiffness > 1 {
		return fmt.Errorf("%w: stiffness must be in [0,1], got %v", dynamo.ErrInvalidConfig, c.Springs.Stiffness)
	}
	if c.Flow.Cells < 0 {
		return fmt.Errorf("%w: flow cells must be non-negative, got %d", dynamo.ErrInvalidConfig, c.Flow.Cells)
	}
	return nil
}

// Bounds returns the simulation box with its minimum corner at the origin.
func (c *Config) Bounds() dynamo.Bounds {
	if c.World.Depth > 0 {
		return dynamo.NewBounds3D(0, 0, 0, c.World.Width, c.World.Height, c.World.Depth)
	}
	return dynamo.NewBounds2D(0, 0, c.World.Width, c.World.Height)
}

// Param returns a fresh parameter block to be shared by one world.
func (c *Config) Param() *physics.Param {
	p := c.Physics.Param
	return &p
}

func (c *Config) Sim() sim.Config {
	return sim.Config{
		Dt:               c.Dt,
		SpringIterations: c.Physics.SpringIterations,
		Solver:           sim.Solver(c.Physics.Solver),
		Collisions:       c.Physics.Collisions,
		Workers:          c.Physics.Workers,
	}
}

func (c *Config) Run() sim.RunConfig {
	return sim.RunConfig{
		Duration:      c.Duration,
		SampleEvery:   c.SampleEvery,
		ValidateState: c.ValidateState,
	}
}

// GravityVec points gravity down the y axis.
func (c *Config) GravityVec() r3.Vec {
	return r3.Vec{Y: -c.Physics.Gravity}
}

// ParticleRadius returns the configured radius, or the radius at which
// Count discs cover FillFactor of the box face.
func (c *Config) ParticleRadius() float64 {
	if c.Particles.Radius > 0 {
		return c.Particles.Radius
	}
	if c.Particles.Count == 0 || c.Particles.FillFactor == 0 {
		return physics.MinRadius
	}
	area := c.World.Width * c.World.Height
	r := math.Sqrt(c.Particles.FillFactor * area / (float64(c.Particles.Count) * math.Pi))
	return math.Max(r, physics.MinRadius)
}
