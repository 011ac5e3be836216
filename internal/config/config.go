package config

import (
	"fmt"
	"os"

	"github.com/san-kum/mhsim/internal/metropolis"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDimensions     = 1
	DefaultParticles      = 5
	DefaultProposalStdDev = 0.2
	DefaultFPS            = 30
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
)

type Config struct {
	Dimensions     int               `yaml:"dimensions"`
	Particles      int               `yaml:"particles"`
	Seed           uint64            `yaml:"seed"`
	ProposalStdDev float64           `yaml:"proposal_stddev"`
	Coupling       string            `yaml:"coupling"`
	Workers        int               `yaml:"workers"`
	FPS            int               `yaml:"fps"`
	Target         metropolis.Target `yaml:"target"`
	Log            LogConfig         `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
	// Rotation settings for File, in megabytes, count and days.
	MaxSize    int  `yaml:"max_size"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAge     int  `yaml:"max_age"`
	Compress   bool `yaml:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Dimensions:     DefaultDimensions,
		Particles:      DefaultParticles,
		ProposalStdDev: DefaultProposalStdDev,
		Coupling:       metropolis.SharedDraw.String(),
		FPS:            DefaultFPS,
		Target:         metropolis.DefaultTarget(),
		Log: LogConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
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
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Validate reports the first invalid field. Nothing is clamped.
func (c *Config) Validate() error {
	if !c.Dim().Valid() {
		return &metropolis.ConfigError{Field: "dimensions", Value: float64(c.Dimensions)}
	}
	if c.Particles <= 0 {
		return &metropolis.ConfigError{Field: "particles", Value: float64(c.Particles)}
	}
	if !(c.ProposalStdDev > 0) {
		return &metropolis.ConfigError{Field: "proposal_stddev", Value: c.ProposalStdDev}
	}
	if c.Workers < 0 {
		return &metropolis.ConfigError{Field: "workers", Value: float64(c.Workers)}
	}
	if c.FPS <= 0 {
		return &metropolis.ConfigError{Field: "fps", Value: float64(c.FPS)}
	}
	if _, err := metropolis.ParseCoupling(c.Coupling); err != nil {
		return err
	}
	return c.Target.Validate()
}

func (c *Config) Dim() metropolis.Dim { return metropolis.Dim(c.Dimensions) }

// CouplingMode parses Coupling; call Validate first.
func (c *Config) CouplingMode() metropolis.Coupling {
	m, _ := metropolis.ParseCoupling(c.Coupling)
	return m
}
