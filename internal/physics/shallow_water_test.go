package physics

import (
	"math"
	"testing"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/operators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type model struct {
	*ShallowWater[float64]
	ops *operators.Operators[float64]
}

func (m model) derive(u State[float64]) State[float64] { return m.Derive(u, m.ops) }

func newModel(t *testing.T, domain float64, n int, p Params[float64]) (model, State[float64]) {
	t.Helper()
	disc := grid.NewDisc(domain, n)
	b := grid.New(disc)
	b.Fill(p.BathymetryAverage)
	return model{NewShallowWater(p, Consts[float64]{b}), operators.New(disc)}, NewState(disc)
}

func TestHBarIsAbsolute(t *testing.T) {
	tests := []struct {
		bavg, want float64
	}{
		{-5000, 5000},
		{5000, 5000},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Params[float64]{Gravity: 9.81, BathymetryAverage: tt.bavg}.HBar())
	}
}

func TestDeriveConstantStateIsZero(t *testing.T) {
	sw, u := newModel(t, 10, 4, Params[float64]{Gravity: 1, BathymetryAverage: -1})
	u[H].Fill(1)

	k := sw.derive(u)
	assert.Equal(t, []float64{0, 0, 0, 0}, k[H].Data())
	assert.Equal(t, []float64{0, 0, 0, 0}, k[V].Data())
}

func TestDeriveCouplesFields(t *testing.T) {
	sw, u := newModel(t, 10, 4, Params[float64]{Gravity: 2, BathymetryAverage: -3})
	copy(u[H].Data(), []float64{0, 1, 0, -1})
	copy(u[V].Data(), []float64{1, 0, -1, 0})

	k := sw.derive(u)

	// Diff1(h) = [0.4, 0, -0.4, 0], Diff1(v) = [0, -0.4, 0, 0.4]
	assert.InDeltaSlice(t, []float64{0, 1.2, 0, -1.2}, k[H].Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{-0.8, 0, 0.8, 0}, k[V].Data(), 1e-12)

	// inputs are untouched
	assert.Equal(t, []float64{0, 1, 0, -1}, u[H].Data())
	assert.Equal(t, []float64{1, 0, -1, 0}, u[V].Data())
}

func TestMassAndEnergy(t *testing.T) {
	sw, u := newModel(t, 4, 4, Params[float64]{Gravity: 2, BathymetryAverage: -1})
	copy(u[H].Data(), []float64{1, 2, 3, 4})
	copy(u[V].Data(), []float64{1, 1, 0, 0})

	assert.InDelta(t, 10.0, sw.Mass(u), 1e-12)
	// (2*(1+4+9+16) + 1*(1+1)) * dx / 2
	assert.InDelta(t, 31.0, sw.Energy(u), 1e-12)
}

func TestDeriveConservesMass(t *testing.T) {
	sw, u := newModel(t, 1, 64, Params[float64]{Gravity: 9.81, BathymetryAverage: -10})
	for i := range u[H].Data() {
		x := u[H].Disc().X(i)
		u[H].Set(i, math.Exp(-50*(x-0.5)*(x-0.5)))
		u[V].Set(i, math.Sin(2*math.Pi*x))
	}

	k := sw.derive(u)
	assert.InDelta(t, 0, k[H].Sum(), 1e-9)
	assert.InDelta(t, 0, k[V].Sum(), 1e-9)
}

func TestStateCopyAndLike(t *testing.T) {
	_, u := newModel(t, 1, 3, Params[float64]{Gravity: 1, BathymetryAverage: 1})
	u[H].Fill(2)

	c := u.Copy()
	c[H].Set(0, 5)
	assert.Equal(t, 2.0, u[H].At(0))

	l := u.NewLike()
	require.Equal(t, 3, l[V].Len())
	assert.Equal(t, []float64{0, 0, 0}, l[H].Data())
	assert.True(t, u.IsFinite())

	u[V].Set(1, math.Inf(1))
	assert.False(t, u.IsFinite())
}
