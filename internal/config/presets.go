package config

import "sort"

// presets are named starting points for common runs.
var presets = map[string]func(*Config){
	// Quick smoke run: a unit cube of 8 particles.
	"tiny": func(c *Config) {
		c.Particles = 8
		c.Steps = 1000
	},
	// The historical default system: 64 particles, a million microsecond
	// steps.
	"classic": func(c *Config) {
		c.Particles = 64
		c.Steps = 1_000_000
		c.Dt = 1e-6
		c.Snapshots = true
	},
	// Larger cell for soak-testing the force engine.
	"big": func(c *Config) {
		c.Particles = 512
		c.Steps = 10_000
		c.Workers = 4
	},
	// Cold start: no thermal velocities, lattice relaxation only.
	"cold": func(c *Config) {
		c.Particles = 64
		c.Steps = 50_000
		c.VelocityStdDev = 0
	},
}

// GetPreset returns the named preset, or nil if it does not exist.
func GetPreset(name string) *Config {
	apply, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := Default()
	apply(cfg)
	return cfg
}

// ListPresets returns all preset names, sorted.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
