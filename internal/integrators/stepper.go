package integrators

import (
	"errors"
	"fmt"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/operators"
	"github.com/san-kum/swesim/internal/physics"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

// System is the stage function called by every stepper.
type System[T grid.Float] interface {
	Derive(u physics.State[T], ops *operators.Operators[T]) physics.State[T]
}

// Stepper advances u in place from t to t+dt.
type Stepper[T grid.Float] interface {
	Step(u *physics.State[T], ops *operators.Operators[T], dt T)
}

var orders = map[string]int{
	"euler": 1,
	"rk2":   2,
	"rk4":   4,
}

var aliases = map[string]string{
	"rk1": "euler",
}

// Canonical resolves aliases such as "rk1" to the registered name.
func Canonical(name string) string {
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

// Names lists the canonical integrator names by increasing order.
func Names() []string {
	return []string{"euler", "rk2", "rk4"}
}

// Order returns the formal order of accuracy of the named scheme, or 0.
func Order(name string) int {
	return orders[Canonical(name)]
}

// New returns the stepper registered under name.
func New[T grid.Float](name string, dyn System[T]) (Stepper[T], error) {
	switch Canonical(name) {
	case "euler":
		return NewEuler(dyn), nil
	case "rk2":
		return NewRK2(dyn), nil
	case "rk4":
		return NewRK4(dyn), nil
	}
	return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownIntegrator, name, Names())
}

// axpy returns u + a*k for every field of the pack.
func axpy[T grid.Float](u physics.State[T], a T, k physics.State[T]) physics.State[T] {
	var out physics.State[T]
	for i := range u {
		out[i] = u[i].Add(k[i].Scale(a))
	}
	return out
}

func assign[T grid.Float](dst *physics.State[T], src physics.State[T]) {
	for i := range dst {
		dst[i].Assign(src[i])
	}
}
