package sim

import (
	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/physics"
)

// Snapshot is the simulator state at an output time. State and Consts alias
// the live fields and are only valid for the duration of the call.
type Snapshot[T grid.Float] struct {
	Step   int
	Time   T
	Final  bool
	State  physics.State[T]
	Consts physics.Consts[T]
}

// Observer receives every emitted snapshot. A non-nil error aborts the run.
type Observer[T grid.Float] interface {
	Observe(s Snapshot[T]) error
}

type ObserverFunc[T grid.Float] func(s Snapshot[T]) error

func (f ObserverFunc[T]) Observe(s Snapshot[T]) error { return f(s) }

// Metric is observed after every step, not only at output times.
type Metric[T grid.Float] interface {
	Name() string
	Observe(s Snapshot[T]) error
	Value() float64
	Reset()
}

type Result struct {
	Steps     int
	Time      float64
	Snapshots int
	Metrics   map[string]float64
}
