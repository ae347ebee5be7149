package config

import (
	"sort"

	"github.com/san-kum/swesim/internal/benchmarks"
)

func preset(fn func(c *Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"coarse": preset(func(c *Config) {
		c.NumDofs = 128
		c.OutputEvery = 60
	}),
	"fine": preset(func(c *Config) {
		c.NumDofs = 2048
		c.SimTime = 1200
		c.Benchmark = benchmarks.SolitaryWave
	}),
	"convergence": preset(func(c *Config) {
		c.DomainSize = 1
		c.NumDofs = 32
		c.Gravity = 1
		c.BathymetryAverage = -1
		c.Dt = 0.01
		c.SimTime = 0.2
		c.OutputEvery = 0.2
		c.Benchmark = benchmarks.SineWave
		c.WriteOutput = false
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
