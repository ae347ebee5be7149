// Package benchmarks provides the named initial conditions a run can start from.
package benchmarks

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/physics"
)

var ErrUnknownBenchmark = errors.New("benchmarks: unknown benchmark")

const (
	GaussianBump = "gaussian_bump"
	SolitaryWave = "solitary_wave"
	SineWave     = "sine_wave"
)

var descriptions = map[string]string{
	GaussianBump: "resting Gaussian bump of height 1 centred in the domain",
	SolitaryWave: "Gaussian bump with v = sqrt(g/h_bar)*h, travelling right",
	SineWave:     "one period of sin(2*pi*x/L) at rest",
}

// Names lists the available benchmarks.
func Names() []string {
	return []string{GaussianBump, SolitaryWave, SineWave}
}

func Describe(name string) string {
	return descriptions[name]
}

// Apply overwrites u and consts with the initial condition registered under name.
// Both packs must already be allocated on the same Disc.
func Apply[T grid.Float](name string, u physics.State[T], consts physics.Consts[T], p physics.Params[T]) error {
	switch name {
	case GaussianBump:
		gaussian(u[physics.H])
		u[physics.V].SetZero()
	case SolitaryWave:
		gaussian(u[physics.H])
		c := solitarySpeed(p)
		u[physics.V].Assign(u[physics.H].Scale(c))
	case SineWave:
		disc := u[physics.H].Disc()
		for i := 0; i < disc.NumDofs; i++ {
			x := float64(disc.X(i)) / float64(disc.DomainSize)
			u[physics.H].Set(i, T(math.Sin(2*math.Pi*x)))
		}
		u[physics.V].SetZero()
	default:
		return fmt.Errorf("%w: %q (available: %v)", ErrUnknownBenchmark, name, Names())
	}

	consts[physics.B].Fill(p.BathymetryAverage)
	return nil
}

// gaussian sets f to exp(-300*y^2), y = (x - L/2)/L.
func gaussian[T grid.Float](f *grid.Field[T]) {
	disc := f.Disc()
	l := float64(disc.DomainSize)
	for i := 0; i < disc.NumDofs; i++ {
		y := (float64(disc.X(i)) - l/2) / l
		f.Set(i, T(math.Exp(-300*y*y)))
	}
}

func solitarySpeed[T grid.Float](p physics.Params[T]) T {
	hBar := float64(p.HBar())
	if hBar == 0 {
		return 0
	}
	return T(math.Sqrt(float64(p.Gravity) / hBar))
}
