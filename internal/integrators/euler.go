package integrators

import (
	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/operators"
	"github.com/san-kum/swesim/internal/physics"
)

// Euler is the forward Euler scheme (RK1).
type Euler[T grid.Float] struct {
	dyn System[T]
}

func NewEuler[T grid.Float](dyn System[T]) *Euler[T] {
	return &Euler[T]{dyn: dyn}
}

func (e *Euler[T]) Step(u *physics.State[T], ops *operators.Operators[T], dt T) {
	k1 := e.dyn.Derive(*u, ops)
	assign(u, axpy(*u, dt, k1))
}
