package config

import (
	"sort"

	"github.com/san-kum/mhsim/internal/metropolis"
)

// Presets are named starting points; only the simulation fields are set,
// logging comes from DefaultConfig.
var Presets = map[string]*Config{
	"demo": {
		Dimensions: 1, Particles: 5, ProposalStdDev: 0.2, Coupling: "shared", FPS: 30,
		Target: metropolis.Target{X: metropolis.Axis{Mean: 2.0, StdDev: 0.2}, Y: metropolis.Axis{Mean: 2.0, StdDev: 0.2}},
	},
	"crowd": {
		Dimensions: 1, Particles: 200, ProposalStdDev: 0.1, Coupling: "shared", FPS: 30,
		Target: metropolis.Target{X: metropolis.Axis{Mean: 0, StdDev: 1}, Y: metropolis.Axis{Mean: 0, StdDev: 1}},
	},
	"plane": {
		Dimensions: 2, Particles: 20, ProposalStdDev: 0.2, Coupling: "shared", FPS: 30,
		Target: metropolis.Target{X: metropolis.Axis{Mean: 2.0, StdDev: 0.4}, Y: metropolis.Axis{Mean: 2.0, StdDev: 0.2}},
	},
	"decoupled": {
		Dimensions: 2, Particles: 20, ProposalStdDev: 0.2, Coupling: "independent", FPS: 30,
		Target: metropolis.Target{X: metropolis.Axis{Mean: 2.0, StdDev: 0.4}, Y: metropolis.Axis{Mean: 2.0, StdDev: 0.2}},
	},
	"slow-mixing": {
		Dimensions: 1, Particles: 10, ProposalStdDev: 0.02, Coupling: "shared", FPS: 60,
		Target: metropolis.Target{X: metropolis.Axis{Mean: 0, StdDev: 2}, Y: metropolis.Axis{Mean: 0, StdDev: 2}},
	},
}

// GetPreset returns a copy of the named preset merged onto DefaultConfig,
// or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Dimensions = p.Dimensions
	cfg.Particles = p.Particles
	cfg.ProposalStdDev = p.ProposalStdDev
	cfg.Coupling = p.Coupling
	cfg.FPS = p.FPS
	cfg.Target = p.Target
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
