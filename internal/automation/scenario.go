// Package automation runs scripted sequences of simulations and parameter
// sweeps on top of the sim package.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swesim/internal/config"
)

// Scenario defines a scripted simulation sequence.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run of a scenario. Preset selects the base
// configuration; keys under config override it.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// RunFunc executes a single configured simulation.
type RunFunc func(ctx context.Context, name string, cfg *config.Config) error

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds and validates the configuration of step i on top of base.
func (s *Scenario) Resolve(i int, base *config.Config) (*config.Config, error) {
	step := s.Steps[i]

	cfg := *base
	if step.Preset != "" {
		p := config.GetPreset(step.Preset)
		if p == nil {
			return nil, fmt.Errorf("step %d: unknown preset: %s", i+1, step.Preset)
		}
		cfg = *p
		cfg.DataDir = base.DataDir
	}
	if !step.Config.IsZero() {
		if err := step.Config.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("step %d: %w", i+1, err)
	}
	return &cfg, nil
}

// RunScenario resolves every step before running any, then executes them in
// order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, run RunFunc) error {
	cfgs := make([]*config.Config, len(scenario.Steps))
	for i := range scenario.Steps {
		cfg, err := scenario.Resolve(i, base)
		if err != nil {
			return err
		}
		cfgs[i] = cfg
	}

	for i, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := scenario.Steps[i].Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", scenario.Name, i+1)
		}
		if err := run(ctx, name, cfg); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
	}
	return nil
}
