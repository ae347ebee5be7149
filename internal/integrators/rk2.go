package integrators

import (
	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/operators"
	"github.com/san-kum/swesim/internal/physics"
)

// RK2 is the two stage Heun scheme.
type RK2[T grid.Float] struct {
	dyn System[T]
}

func NewRK2[T grid.Float](dyn System[T]) *RK2[T] {
	return &RK2[T]{dyn: dyn}
}

func (r *RK2[T]) Step(u *physics.State[T], ops *operators.Operators[T], dt T) {
	k1 := r.dyn.Derive(*u, ops)
	tmp := axpy(*u, dt, k1)
	k2 := r.dyn.Derive(tmp, ops)

	// U = U + dt/2 * (k1 + k2)
	var next physics.State[T]
	for i := range next {
		next[i] = u[i].Add(k1[i].Add(k2[i]).Scale(dt / 2))
	}
	assign(u, next)
}
