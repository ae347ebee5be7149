package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/swesim/internal/benchmarks"
	"github.com/san-kum/swesim/internal/config"
	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/integrators"
	"github.com/san-kum/swesim/internal/operators"
	"github.com/san-kum/swesim/internal/physics"
)

type Simulator[T grid.Float] struct {
	cfg     config.Config
	disc    *grid.Disc[T]
	ops     *operators.Operators[T]
	model   *physics.ShallowWater[T]
	stepper integrators.Stepper[T]

	u      physics.State[T]
	consts physics.Consts[T]

	dt       T
	numSteps int
	everyNth int
	step     int

	metrics   []Metric[T]
	observers []Observer[T]
}

// New validates cfg and builds the grid, initial condition and stepper.
// Every configuration error is reported here, before any step is taken.
func New[T grid.Float](cfg *config.Config) (*Simulator[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	disc := grid.NewDisc(T(cfg.DomainSize), cfg.NumDofs)
	params := physics.Params[T]{
		Gravity:           T(cfg.Gravity),
		BathymetryAverage: T(cfg.BathymetryAverage),
	}

	s := &Simulator[T]{
		cfg:      *cfg,
		disc:     disc,
		ops:      operators.New(disc),
		u:        physics.NewState(disc),
		consts:   physics.Consts[T]{grid.New(disc)},
		dt:       T(cfg.EffectiveDt()),
		numSteps: cfg.NumTimesteps(),
		everyNth: cfg.OutputEveryNth(),
	}
	if err := benchmarks.Apply(cfg.Benchmark, s.u, s.consts, params); err != nil {
		return nil, err
	}
	s.model = physics.NewShallowWater(params, s.consts)

	stepper, err := integrators.New[T](cfg.Integrator, s.model)
	if err != nil {
		return nil, err
	}
	s.stepper = stepper

	return s, nil
}

func (s *Simulator[T]) AddMetric(m Metric[T])     { s.metrics = append(s.metrics, m) }
func (s *Simulator[T]) AddObserver(o Observer[T]) { s.observers = append(s.observers, o) }

func (s *Simulator[T]) Config() config.Config              { return s.cfg }
func (s *Simulator[T]) Disc() *grid.Disc[T]                { return s.disc }
func (s *Simulator[T]) Model() *physics.ShallowWater[T]    { return s.model }
func (s *Simulator[T]) Operators() *operators.Operators[T] { return s.ops }
func (s *Simulator[T]) State() physics.State[T]            { return s.u }
func (s *Simulator[T]) Consts() physics.Consts[T]          { return s.consts }
func (s *Simulator[T]) Dt() T                              { return s.dt }
func (s *Simulator[T]) NumTimesteps() int                  { return s.numSteps }
func (s *Simulator[T]) OutputEveryNth() int                { return s.everyNth }
func (s *Simulator[T]) StepCount() int                     { return s.step }
func (s *Simulator[T]) Done() bool                         { return s.step >= s.numSteps }

// Time is dt*(i+1) after step i.
func (s *Simulator[T]) Time() T {
	return s.dt * T(s.step)
}

// Step advances the state by one dt in place.
func (s *Simulator[T]) Step() error {
	s.stepper.Step(&s.u, s.ops, s.dt)
	s.step++

	if !s.u.IsFinite() {
		return &SimulationError{Step: s.step - 1, Time: float64(s.Time()), Wrapped: ErrUnstable}
	}
	return nil
}

// Reset restores the initial condition and rewinds time to zero.
func (s *Simulator[T]) Reset() error {
	s.step = 0
	return benchmarks.Apply(s.cfg.Benchmark, s.u, s.consts, s.model.Params)
}

func (s *Simulator[T]) snapshot(final bool) Snapshot[T] {
	return Snapshot[T]{
		Step:   s.step,
		Time:   s.Time(),
		Final:  final,
		State:  s.u,
		Consts: s.consts,
	}
}

func (s *Simulator[T]) emit(final bool) error {
	snap := s.snapshot(final)
	for _, o := range s.observers {
		if err := o.Observe(snap); err != nil {
			return &SimulationError{Step: s.step, Time: float64(snap.Time), Wrapped: fmt.Errorf("observer: %w", err)}
		}
	}
	return nil
}

func (s *Simulator[T]) observeMetrics() error {
	snap := s.snapshot(s.Done())
	for _, m := range s.metrics {
		if err := m.Observe(snap); err != nil {
			return &SimulationError{Step: s.step, Time: float64(snap.Time), Wrapped: fmt.Errorf("metric %s: %w", m.Name(), err)}
		}
	}
	return nil
}

// Run emits the initial state, steps until NumTimesteps, and emits after
// step i whenever i is a multiple of OutputEveryNth. The last step is always
// emitted, marked Final. ctx is checked between steps.
func (s *Simulator[T]) Run(ctx context.Context) (*Result, error) {
	result := &Result{Metrics: make(map[string]float64)}
	defer func() {
		result.Steps = s.step
		result.Time = float64(s.Time())
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for _, m := range s.metrics {
		m.Reset()
	}
	if err := s.observeMetrics(); err != nil {
		return result, err
	}
	if err := s.emit(s.Done()); err != nil {
		return result, err
	}
	result.Snapshots++

	for i := s.step; i < s.numSteps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			return result, err
		}
		if err := s.observeMetrics(); err != nil {
			return result, err
		}

		if i%s.everyNth == 0 || s.Done() {
			if err := s.emit(s.Done()); err != nil {
				return result, err
			}
			result.Snapshots++
		}
	}

	return result, nil
}
