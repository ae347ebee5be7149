package config

import (
	"errors"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "SWESIM"

// flagNames maps config keys to their command line flags.
var flagNames = map[string]string{
	"domain_size":        "domain-size",
	"num_dofs":           "num-dofs",
	"gravity":            "gravity",
	"bathymetry_average": "bathymetry-average",
	"dt":                 "dt",
	"sim_time":           "sim-time",
	"output_every":       "output-every",
	"integrator":         "integrator",
	"benchmark":          "benchmark",
	"precision":          "precision",
	"data_dir":           "data-dir",
	"write_output":       "write-output",
}

// AddFlags registers one flag per config key, defaulting to DefaultConfig.
// Keys listed in omit get no flag.
func AddFlags(flags *pflag.FlagSet, omit ...string) {
	skip := make(map[string]bool, len(omit))
	for _, key := range omit {
		skip[flagNames[key]] = true
	}

	all := pflag.NewFlagSet("config", pflag.ContinueOnError)
	registerFlags(all)
	all.VisitAll(func(f *pflag.Flag) {
		if !skip[f.Name] {
			flags.AddFlag(f)
		}
	})
}

func registerFlags(flags *pflag.FlagSet) {
	d := DefaultConfig()
	flags.Float64("domain-size", d.DomainSize, "length of the periodic domain")
	flags.Int("num-dofs", d.NumDofs, "number of grid points")
	flags.Float64("gravity", d.Gravity, "gravitational acceleration")
	flags.Float64("bathymetry-average", d.BathymetryAverage, "average bathymetry (negative below the surface)")
	flags.Float64("dt", d.Dt, "time step size, <= 0 estimates it from the wave speed")
	flags.Float64("sim-time", d.SimTime, "total simulation time")
	flags.Float64("output-every", d.OutputEvery, "simulation time between snapshots")
	flags.String("integrator", d.Integrator, "time integrator (euler|rk1|rk2|rk4)")
	flags.String("benchmark", d.Benchmark, "initial condition")
	flags.String("precision", d.Precision, "floating point precision (float64|float32)")
	flags.String("data-dir", d.DataDir, "directory for run output and the catalog")
	flags.Bool("write-output", d.WriteOutput, "write snapshot files")
}

// Bind layers defaults < config file < SWESIM_* environment < changed flags.
// flags may be nil.
func Bind(v *viper.Viper, flags *pflag.FlagSet) error {
	UsePreset(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags == nil {
		return nil
	}
	for key, name := range flagNames {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// UsePreset makes cfg the lowest layer, replacing DefaultConfig.
func UsePreset(v *viper.Viper, cfg *Config) {
	v.SetDefault("domain_size", cfg.DomainSize)
	v.SetDefault("num_dofs", cfg.NumDofs)
	v.SetDefault("gravity", cfg.Gravity)
	v.SetDefault("bathymetry_average", cfg.BathymetryAverage)
	v.SetDefault("dt", cfg.Dt)
	v.SetDefault("sim_time", cfg.SimTime)
	v.SetDefault("output_every", cfg.OutputEvery)
	v.SetDefault("integrator", cfg.Integrator)
	v.SetDefault("benchmark", cfg.Benchmark)
	v.SetDefault("precision", cfg.Precision)
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("write_output", cfg.WriteOutput)
}

// ReadInConfig reads path, or config.yaml from the default data dir when path
// is empty. A missing default file is not an error.
func ReadInConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	home, err := homedir.Expand(DefaultDataDir)
	if err != nil {
		return err
	}
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(".", ".swesim"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
