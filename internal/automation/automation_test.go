package automation

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/swesim/internal/benchmarks"
	"github.com/san-kum/swesim/internal/config"
)

const scenarioYAML = `
name: resolution
description: coarse then fine
steps:
  - name: coarse
    preset: convergence
  - preset: convergence
    config:
      num_dofs: 64
      integrator: euler
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "resolution", sc.Name)
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, "coarse", sc.Steps[0].Name)
	assert.True(t, sc.Steps[0].Config.IsZero())
}

func TestParseScenarioErrors(t *testing.T) {
	_, err := ParseScenario([]byte("name: empty\n"))
	assert.Error(t, err)

	_, err = ParseScenario([]byte("steps: [\n"))
	assert.Error(t, err)

	_, err = LoadScenario("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestScenarioResolve(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	base := config.DefaultConfig()
	base.DataDir = "/tmp/runs"

	cfg, err := sc.Resolve(1, base)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.NumDofs)
	assert.Equal(t, "euler", cfg.Integrator)
	assert.Equal(t, 1.0, cfg.DomainSize)
	assert.Equal(t, benchmarks.SineWave, cfg.Benchmark)
	assert.Equal(t, "/tmp/runs", cfg.DataDir)

	// base is untouched
	assert.Equal(t, config.DefaultNumDofs, base.NumDofs)
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	var names []string
	var dofs []int
	run := func(ctx context.Context, name string, cfg *config.Config) error {
		names = append(names, name)
		dofs = append(dofs, cfg.NumDofs)
		return nil
	}

	require.NoError(t, RunScenario(context.Background(), sc, config.DefaultConfig(), run))
	assert.Equal(t, []string{"coarse", "resolution-2"}, names)
	assert.Equal(t, []int{32, 64}, dofs)
}

func TestRunScenarioValidatesBeforeRunning(t *testing.T) {
	sc, err := ParseScenario([]byte(`
name: broken
steps:
  - preset: convergence
  - config:
      num_dofs: 0
`))
	require.NoError(t, err)

	calls := 0
	run := func(ctx context.Context, name string, cfg *config.Config) error {
		calls++
		return nil
	}

	err = RunScenario(context.Background(), sc, config.DefaultConfig(), run)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Zero(t, calls)
}

func TestRunScenarioStopsOnFailure(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	run := func(ctx context.Context, name string, cfg *config.Config) error {
		calls++
		return boom
	}

	err = RunScenario(context.Background(), sc, config.DefaultConfig(), run)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestUnknownPresetInScenario(t *testing.T) {
	sc, err := ParseScenario([]byte("name: x\nsteps:\n  - preset: nope\n"))
	require.NoError(t, err)

	_, err = sc.Resolve(0, config.DefaultConfig())
	assert.Error(t, err)
}

func TestSweepParams(t *testing.T) {
	params := SweepParams()
	assert.True(t, sort.StringsAreSorted(params))
	assert.Contains(t, params, "dt")
	assert.Contains(t, params, "num_dofs")
}

func TestRunSweepDt(t *testing.T) {
	var progress []int
	sweep := &ParameterSweep{
		Config:    *config.GetPreset("convergence"),
		ParamName: "dt",
		ParamMin:  0.01,
		ParamMax:  0.04,
		NumSteps:  4,
		Progress:  func(i, n int, v float64) { progress = append(progress, i) },
	}

	results, err := RunSweep(context.Background(), sweep)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, progress)

	for i, r := range results {
		assert.InDelta(t, 0.01*float64(i+1), r.ParamValue, 1e-12)
		assert.True(t, r.Stable)
		assert.Less(t, r.MassDrift, 1e-9)
	}
	// rk4 damps energy faster with larger dt
	for i := 1; i < len(results); i++ {
		assert.Greater(t, results[i].EnergyDrift, results[i-1].EnergyDrift)
	}

	stable, unstable := SweepStats(results)
	assert.Equal(t, 4, stable)
	assert.Zero(t, unstable)
}

func TestRunSweepRecordsInstability(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NumDofs = 8
	cfg.Gravity = 1
	cfg.BathymetryAverage = -1
	cfg.Dt = 1
	cfg.SimTime = 5000
	cfg.OutputEvery = 5000
	cfg.Integrator = "euler"
	cfg.Benchmark = benchmarks.SineWave

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Config:    *cfg,
		ParamName: "domain_size",
		ParamMin:  1,
		ParamMax:  100,
		NumSteps:  2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Stable)
	assert.Less(t, results[0].Steps, 5000)
	assert.True(t, results[1].Stable)
	assert.Equal(t, 5000, results[1].Steps)

	stable, unstable := SweepStats(results)
	assert.Equal(t, 1, stable)
	assert.Equal(t, 1, unstable)
}

func TestRunSweepErrors(t *testing.T) {
	base := *config.GetPreset("convergence")

	_, err := RunSweep(context.Background(), &ParameterSweep{Config: base, ParamName: "viscosity", NumSteps: 2})
	assert.Error(t, err)

	_, err = RunSweep(context.Background(), &ParameterSweep{Config: base, ParamName: "dt", NumSteps: 0})
	assert.Error(t, err)

	_, err = RunSweep(context.Background(), &ParameterSweep{Config: base, ParamName: "num_dofs", ParamMin: 0, ParamMax: 0, NumSteps: 1})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
