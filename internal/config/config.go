// Package config loads and saves run configuration files.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mdlab-go/mdsim/internal/md"
)

// Config is the on-disk run configuration. Zero values fall back to the
// defaults at load time, so partial files are fine.
type Config struct {
	Particles      int     `yaml:"particles"`
	Steps          int     `yaml:"steps"`
	Dt             float64 `yaml:"dt"`
	Epsilon        float64 `yaml:"epsilon"`
	Sigma          float64 `yaml:"sigma"`
	Mass           float64 `yaml:"mass"`
	VelocityStdDev float64 `yaml:"vel_stddev"`
	Boundary       string  `yaml:"boundary"`
	Seed           int64   `yaml:"seed"`
	Workers        int     `yaml:"workers"`
	Snapshots      bool    `yaml:"snapshots"`
}

func Default() *Config {
	p := md.DefaultParams()
	return &Config{
		Particles:      p.Particles,
		Steps:          p.Steps,
		Dt:             p.Dt,
		Epsilon:        p.Epsilon,
		Sigma:          p.Sigma,
		Mass:           p.Mass,
		VelocityStdDev: p.VelocityStdDev,
		Boundary:       string(p.Boundary),
	}
}

// Load reads a yaml config, overlaying the file's values on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
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

// Params converts the configuration into validated-ready run parameters.
// Validation itself happens in md.Params.Validate at run start.
func (c *Config) Params() md.Params {
	return md.Params{
		Particles:      c.Particles,
		Steps:          c.Steps,
		Dt:             c.Dt,
		Epsilon:        c.Epsilon,
		Sigma:          c.Sigma,
		Mass:           c.Mass,
		VelocityStdDev: c.VelocityStdDev,
		Boundary:       md.Mode(c.Boundary),
		Seed:           c.Seed,
	}
}
