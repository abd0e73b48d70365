package config

import "sort"

// Presets maps scene -> preset name -> adjustment applied to DefaultConfig.
var Presets = map[string]map[string]func(*Config){
	"pile": {
		"dense": func(c *Config) {
			c.Particles.Count = 1000
			c.Particles.FillFactor = 0.7
		},
		"loose": func(c *Config) {
			c.Particles.Count = 200
			c.Particles.FillFactor = 0.3
			c.Particles.RadiusJitter = 0.4
		},
		"bouncy": func(c *Config) {
			c.Physics.DampBounds = 1
			c.Physics.DampCollision = 1
			c.Physics.DampVelocity = 1
		},
	},
	"gas": {
		"dilute": func(c *Config) {
			c.Particles.Count = 150
			c.Particles.FillFactor = 0.15
			c.Particles.Speed = 1
		},
		"hot": func(c *Config) {
			c.Particles.Count = 400
			c.Particles.FillFactor = 0.3
			c.Particles.Speed = 3
		},
	},
	"cloth": {
		"soft": func(c *Config) {
			c.Springs.Stiffness = 0.3
			c.Physics.SpringIterations = 4
		},
		"stiff": func(c *Config) {
			c.Springs.Stiffness = 1
			c.Physics.SpringIterations = 16
		},
		"jacobi": func(c *Config) {
			c.Physics.Solver = "jacobi"
			c.Physics.SpringIterations = 24
		},
	},
	"chain": {
		"short": func(c *Config) {
			c.Particles.Count = 8
		},
		"long": func(c *Config) {
			c.Particles.Count = 40
			c.Physics.SpringIterations = 24
		},
	},
	"flow": {
		"vortex": func(c *Config) {
			c.Flow.Mult = 0.4
			c.Physics.Gravity = 0
		},
		"storm": func(c *Config) {
			c.Flow.Mult = 1
			c.Flow.Cells = 32
			c.Particles.Count = 1500
		},
	},
}

// GetPreset returns a complete config for scene with the named preset
// applied, or nil if either is unknown.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	apply, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Scene = scene
	apply(cfg)
	return cfg
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
