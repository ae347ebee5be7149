package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/swesim/internal/config"
	"github.com/san-kum/swesim/internal/integrators"
	"github.com/san-kum/swesim/internal/physics"
	"github.com/san-kum/swesim/internal/sim"
)

const DefaultRefine = 16

var (
	ErrNoTimesteps = errors.New("analysis: convergence study needs at least one dt")
	// ErrIncommensurateDt is returned for a dt that does not divide the final
	// time, since runs would then end at different times than the reference.
	ErrIncommensurateDt = errors.New("analysis: dt does not divide sim_time")
)

type Study struct {
	// Config fixes the grid, physics, benchmark and final time (SimTime).
	// Dt and Integrator are overridden per run.
	Config      config.Config
	Dts         []float64
	Integrators []string
	// Refine divides the smallest dt for the RK4 reference run.
	Refine int
}

type Row struct {
	Integrator string
	Dt         float64
	Error      float64
	// Order is the observed order against the previous, larger dt; NaN on
	// the first row of each integrator.
	Order float64
}

type Report struct {
	ReferenceDt float64
	Rows        []Row
}

// Observed returns the order measured between the two smallest dts.
func (r *Report) Observed(integrator string) float64 {
	order := math.NaN()
	for _, row := range r.Rows {
		if row.Integrator == integrator {
			order = row.Order
		}
	}
	return order
}

// Convergence integrates the study's configuration once per (integrator, dt)
// and measures the max-norm distance of h and v to the reference solution.
func Convergence(ctx context.Context, s Study) (*Report, error) {
	if len(s.Dts) == 0 {
		return nil, ErrNoTimesteps
	}
	dts := slices.Clone(s.Dts)
	slices.SortFunc(dts, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	for _, dt := range dts {
		if err := checkDt(dt, s.Config.SimTime); err != nil {
			return nil, err
		}
	}
	refine := s.Refine
	if refine <= 0 {
		refine = DefaultRefine
	}
	names := s.Integrators
	if len(names) == 0 {
		names = integrators.Names()
	}

	report := &Report{ReferenceDt: dts[len(dts)-1] / float64(refine)}
	ref, err := solve(ctx, s.Config, "rk4", report.ReferenceDt)
	if err != nil {
		return nil, fmt.Errorf("analysis: reference: %w", err)
	}

	for _, name := range names {
		prev := Row{}
		for i, dt := range dts {
			u, err := solve(ctx, s.Config, name, dt)
			if err != nil {
				return nil, fmt.Errorf("analysis: %s dt=%g: %w", name, dt, err)
			}

			row := Row{Integrator: name, Dt: dt, Error: distance(u, ref), Order: math.NaN()}
			if i > 0 {
				row.Order = math.Log(prev.Error/row.Error) / math.Log(prev.Dt/row.Dt)
			}
			report.Rows = append(report.Rows, row)
			prev = row
		}
	}
	return report, nil
}

func checkDt(dt, simTime float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: dt=%g", ErrIncommensurateDt, dt)
	}
	n := simTime / dt
	if math.Abs(n-math.Round(n)) > 1e-6*math.Max(n, 1) {
		return fmt.Errorf("%w: dt=%g, sim_time=%g", ErrIncommensurateDt, dt, simTime)
	}
	return nil
}

func solve(ctx context.Context, cfg config.Config, integrator string, dt float64) (physics.State[float64], error) {
	cfg.Integrator = integrator
	cfg.Dt = dt
	cfg.OutputEvery = math.Max(cfg.SimTime, dt)

	s, err := sim.New[float64](&cfg)
	if err != nil {
		return physics.State[float64]{}, err
	}
	if _, err := s.Run(ctx); err != nil {
		return physics.State[float64]{}, err
	}
	return s.State(), nil
}

func distance(u, ref physics.State[float64]) float64 {
	d := 0.0
	for i := range u {
		d = math.Max(d, floats.Distance(u[i].Data(), ref[i].Data(), math.Inf(1)))
	}
	return d
}
