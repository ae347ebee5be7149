package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/swesim/internal/benchmarks"
	"github.com/san-kum/swesim/internal/integrators"
)

const (
	DefaultDomainSize        = 150000.0
	DefaultNumDofs           = 512
	DefaultGravity           = 9.81
	DefaultBathymetryAverage = -5000.0
	DefaultSimTime           = 600.0
	DefaultOutputEvery       = 10.0
	DefaultDataDir           = "~/.swesim"

	Float64 = "float64"
	Float32 = "float32"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	DomainSize        float64 `yaml:"domain_size" json:"domain_size" mapstructure:"domain_size"`
	NumDofs           int     `yaml:"num_dofs" json:"num_dofs" mapstructure:"num_dofs"`
	Gravity           float64 `yaml:"gravity" json:"gravity" mapstructure:"gravity"`
	BathymetryAverage float64 `yaml:"bathymetry_average" json:"bathymetry_average" mapstructure:"bathymetry_average"`
	// Dt <= 0 selects dx/sqrt(|g*bathymetry_average|).
	Dt          float64 `yaml:"dt" json:"dt" mapstructure:"dt"`
	SimTime     float64 `yaml:"sim_time" json:"sim_time" mapstructure:"sim_time"`
	OutputEvery float64 `yaml:"output_every" json:"output_every" mapstructure:"output_every"`
	Integrator  string  `yaml:"integrator" json:"integrator" mapstructure:"integrator"`
	Benchmark   string  `yaml:"benchmark" json:"benchmark" mapstructure:"benchmark"`
	Precision   string  `yaml:"precision" json:"precision" mapstructure:"precision"`
	DataDir     string  `yaml:"data_dir" json:"data_dir" mapstructure:"data_dir"`
	WriteOutput bool    `yaml:"write_output" json:"write_output" mapstructure:"write_output"`
}

func DefaultConfig() *Config {
	return &Config{
		DomainSize:        DefaultDomainSize,
		NumDofs:           DefaultNumDofs,
		Gravity:           DefaultGravity,
		BathymetryAverage: DefaultBathymetryAverage,
		Dt:                -1,
		SimTime:           DefaultSimTime,
		OutputEvery:       DefaultOutputEvery,
		Integrator:        "rk4",
		Benchmark:         benchmarks.GaussianBump,
		Precision:         Float64,
		DataDir:           DefaultDataDir,
		WriteOutput:       true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
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
	switch {
	case c.DomainSize <= 0:
		return invalid("domain_size must be positive, got %g", c.DomainSize)
	case c.NumDofs <= 0:
		return invalid("num_dofs must be positive, got %d", c.NumDofs)
	case c.SimTime < 0:
		return invalid("sim_time must not be negative, got %g", c.SimTime)
	case c.OutputEvery <= 0:
		return invalid("output_every must be positive, got %g", c.OutputEvery)
	case c.Dt <= 0 && c.Gravity*c.BathymetryAverage == 0:
		return invalid("dt cannot be estimated with gravity=%g bathymetry_average=%g", c.Gravity, c.BathymetryAverage)
	}

	if integrators.Order(c.Integrator) == 0 {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, integrators.ErrUnknownIntegrator, c.Integrator)
	}
	if benchmarks.Describe(c.Benchmark) == "" {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, benchmarks.ErrUnknownBenchmark, c.Benchmark)
	}
	if c.Precision != Float64 && c.Precision != Float32 {
		return invalid("precision must be %s or %s, got %q", Float64, Float32, c.Precision)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c *Config) Dx() float64 {
	return c.DomainSize / float64(c.NumDofs)
}

// EffectiveDt is Dt, or the gravity wave CFL estimate when Dt <= 0.
func (c *Config) EffectiveDt() float64 {
	if c.Dt > 0 {
		return c.Dt
	}
	return c.Dx() / math.Sqrt(math.Abs(c.Gravity*c.BathymetryAverage))
}

func (c *Config) NumTimesteps() int {
	return int(math.Round(c.SimTime / c.EffectiveDt()))
}

// OutputEveryNth is the step interval between snapshots, at least 1.
func (c *Config) OutputEveryNth() int {
	return max(int(math.Round(c.OutputEvery/c.EffectiveDt())), 1)
}

// DataPath returns DataDir with a leading ~ expanded.
func (c *Config) DataPath() (string, error) {
	return homedir.Expand(c.DataDir)
}
