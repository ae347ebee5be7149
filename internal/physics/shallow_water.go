package physics

import (
	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/operators"
)

// Indices into State and Consts.
const (
	H = 0 // surface height
	V = 1 // velocity

	B = 0 // bathymetry
)

const (
	NumVars   = 2
	NumConsts = 1
)

// State packs the unknowns advanced in time.
type State[T grid.Float] [NumVars]*grid.Field[T]

// Consts packs fields that are read but never advanced.
type Consts[T grid.Float] [NumConsts]*grid.Field[T]

// NewState allocates zeroed h and v on disc.
func NewState[T grid.Float](disc *grid.Disc[T]) State[T] {
	var s State[T]
	for i := range s {
		s[i] = grid.New(disc)
	}
	return s
}

// NewLike allocates a zeroed state shaped like s.
func (s State[T]) NewLike() State[T] {
	var out State[T]
	for i := range s {
		out[i] = grid.NewLike(s[i])
	}
	return out
}

func (s State[T]) Copy() State[T] {
	var out State[T]
	for i := range s {
		out[i] = s[i].Copy()
	}
	return out
}

func (s State[T]) IsFinite() bool {
	for _, f := range s {
		if !f.IsFinite() {
			return false
		}
	}
	return true
}

// Params are the scalar physical parameters of the linearized model.
type Params[T grid.Float] struct {
	Gravity           T
	BathymetryAverage T
}

// HBar is the representative depth |BathymetryAverage|.
func (p Params[T]) HBar() T {
	if p.BathymetryAverage < 0 {
		return -p.BathymetryAverage
	}
	return p.BathymetryAverage
}

// ShallowWater evaluates the right hand side of
//
//	h_t = -h_bar * v_x
//	v_t = -g * h_x
type ShallowWater[T grid.Float] struct {
	Params[T]
	consts Consts[T]
}

func NewShallowWater[T grid.Float](p Params[T], consts Consts[T]) *ShallowWater[T] {
	return &ShallowWater[T]{Params: p, consts: consts}
}

func (w *ShallowWater[T]) Consts() Consts[T] { return w.consts }

// Derive returns the time derivatives of u. It keeps no state between calls.
func (w *ShallowWater[T]) Derive(u State[T], ops *operators.Operators[T]) State[T] {
	var out State[T]
	out[H] = ops.Diff1(u[V]).Scale(-w.HBar())
	out[V] = ops.Diff1(u[H]).Scale(-w.Gravity)
	return out
}

// Mass is the discrete integral of h over the domain.
func (w *ShallowWater[T]) Mass(u State[T]) T {
	return u[H].Sum() * u[H].Disc().Dx
}

// Energy is the discrete integral of (g*h^2 + h_bar*v^2)/2.
func (w *ShallowWater[T]) Energy(u State[T]) T {
	g, hBar := w.Gravity, w.HBar()
	h, v := u[H].Data(), u[V].Data()

	var e T
	for i := range h {
		e += g*h[i]*h[i] + hBar*v[i]*v[i]
	}
	return e * u[H].Disc().Dx / 2
}
