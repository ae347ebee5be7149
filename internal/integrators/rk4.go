package integrators

import (
	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/operators"
	"github.com/san-kum/swesim/internal/physics"
)

// RK4 is the classic four stage Runge-Kutta scheme.
type RK4[T grid.Float] struct {
	dyn System[T]
}

func NewRK4[T grid.Float](dyn System[T]) *RK4[T] {
	return &RK4[T]{dyn: dyn}
}

func (r *RK4[T]) Step(u *physics.State[T], ops *operators.Operators[T], dt T) {
	half := dt / 2

	k1 := r.dyn.Derive(*u, ops)
	k2 := r.dyn.Derive(axpy(*u, half, k1), ops)
	k3 := r.dyn.Derive(axpy(*u, half, k2), ops)
	k4 := r.dyn.Derive(axpy(*u, dt, k3), ops)

	// U = U + dt/6 * (k1 + 2*k2 + 2*k3 + k4)
	var next physics.State[T]
	for i := range next {
		sum := k1[i].Add(k2[i].Scale(2)).Add(k3[i].Scale(2)).Add(k4[i])
		next[i] = u[i].Add(sum.Scale(dt / 6))
	}
	assign(u, next)
}
