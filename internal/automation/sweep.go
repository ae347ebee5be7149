package automation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/swesim/internal/config"
	"github.com/san-kum/swesim/internal/metrics"
	"github.com/san-kum/swesim/internal/sim"
)

// setters lists the parameters a sweep can vary.
var setters = map[string]func(*config.Config, float64){
	"dt":                 func(c *config.Config, v float64) { c.Dt = v },
	"gravity":            func(c *config.Config, v float64) { c.Gravity = v },
	"bathymetry_average": func(c *config.Config, v float64) { c.BathymetryAverage = v },
	"domain_size":        func(c *config.Config, v float64) { c.DomainSize = v },
	"num_dofs":           func(c *config.Config, v float64) { c.NumDofs = int(v) },
}

func SweepParams() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep runs a configuration across evenly spaced parameter values.
type ParameterSweep struct {
	Config    config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	// Progress, when set, is called after each value completes.
	Progress func(i, n int, value float64)
}

// SweepResult holds the outcome of one value of a sweep.
type SweepResult struct {
	ParamValue  float64
	Steps       int
	MassDrift   float64
	EnergyDrift float64
	// Stable is false when the run blew up.
	Stable bool
}

// RunSweep executes a parameter sweep. Unstable runs are recorded, not
// returned as errors.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	set, ok := setters[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter: %s (available: %v)", sweep.ParamName, SweepParams())
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one value, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Config
		set(&cfg, paramVal)
		cfg.WriteOutput = false

		s, err := sim.New[float64](&cfg)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		mass := metrics.NewMassDrift(s.Model())
		energy := metrics.NewEnergyDrift(s.Model())
		s.AddMetric(mass)
		s.AddMetric(energy)

		res, err := s.Run(ctx)
		stable := true
		if err != nil {
			if !errors.Is(err, sim.ErrUnstable) {
				return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
			}
			stable = false
		}

		results = append(results, SweepResult{
			ParamValue:  paramVal,
			Steps:       res.Steps,
			MassDrift:   mass.Value(),
			EnergyDrift: energy.Value(),
			Stable:      stable,
		})

		if sweep.Progress != nil {
			sweep.Progress(i+1, sweep.NumSteps, paramVal)
		}
	}

	return results, nil
}

// SweepStats counts stable and unstable runs.
func SweepStats(results []SweepResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
