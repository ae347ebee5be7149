package integrators_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/integrators"
	"github.com/san-kum/swesim/internal/operators"
	"github.com/san-kum/swesim/internal/physics"
)

// standingWave sets up h = sin(2*pi*x), v = 0 on the unit domain with g = h_bar = 1.
type standingWave struct {
	disc *grid.Disc[float64]
	ops  *operators.Operators[float64]
	sw   *physics.ShallowWater[float64]
}

func newStandingWave(n int) *standingWave {
	disc := grid.NewDisc(1.0, n)
	b := grid.New(disc)
	b.Fill(-1)
	return &standingWave{
		disc: disc,
		ops:  operators.New(disc),
		sw:   physics.NewShallowWater(physics.Params[float64]{Gravity: 1, BathymetryAverage: -1}, physics.Consts[float64]{b}),
	}
}

func (w *standingWave) initial() physics.State[float64] {
	u := physics.NewState(w.disc)
	for i := range u[physics.H].Data() {
		u[physics.H].Set(i, math.Sin(2*math.Pi*w.disc.X(i)))
	}
	return u
}

// exact is the solution of the semi-discrete system for the initial state:
// h = cos(wt) sin(kx), v = -(g*kappa/w) sin(wt) cos(kx), kappa = sin(k*dx)/dx.
func (w *standingWave) exact(t float64) ([]float64, []float64) {
	k := 2 * math.Pi
	kappa := math.Sin(k*w.disc.Dx) / w.disc.Dx
	omega := kappa

	h := make([]float64, w.disc.NumDofs)
	v := make([]float64, w.disc.NumDofs)
	for i := range h {
		x := w.disc.X(i)
		h[i] = math.Cos(omega*t) * math.Sin(k*x)
		v[i] = -math.Sin(omega*t) * math.Cos(k*x)
	}
	return h, v
}

func (w *standingWave) errorAt(name string, dt, final float64) float64 {
	stepper, err := integrators.New[float64](name, w.sw)
	Expect(err).NotTo(HaveOccurred())

	u := w.initial()
	steps := int(math.Round(final / dt))
	for i := 0; i < steps; i++ {
		stepper.Step(&u, w.ops, dt)
	}

	h, v := w.exact(final)
	worst := 0.0
	for i := range h {
		worst = math.Max(worst, math.Abs(u[physics.H].At(i)-h[i]))
		worst = math.Max(worst, math.Abs(u[physics.V].At(i)-v[i]))
	}
	return worst
}

var _ = Describe("Stepper", func() {
	var w *standingWave

	BeforeEach(func() {
		w = newStandingWave(32)
	})

	Describe("registry", func() {
		It("resolves canonical names and aliases", func() {
			for _, name := range []string{"euler", "rk1", "rk2", "rk4"} {
				s, err := integrators.New[float64](name, w.sw)
				Expect(err).NotTo(HaveOccurred())
				Expect(s).NotTo(BeNil())
			}
			Expect(integrators.Canonical("rk1")).To(Equal("euler"))
			Expect(integrators.Names()).To(Equal([]string{"euler", "rk2", "rk4"}))
		})

		It("reports formal orders", func() {
			Expect(integrators.Order("euler")).To(Equal(1))
			Expect(integrators.Order("rk1")).To(Equal(1))
			Expect(integrators.Order("rk2")).To(Equal(2))
			Expect(integrators.Order("rk4")).To(Equal(4))
			Expect(integrators.Order("leapfrog")).To(Equal(0))
		})

		It("rejects unknown names", func() {
			_, err := integrators.New[float64]("rk3", w.sw)
			Expect(errors.Is(err, integrators.ErrUnknownIntegrator)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(`"rk3"`))
		})
	})

	DescribeTable("leaves a constant state unchanged",
		func(name string) {
			disc := grid.NewDisc(10.0, 4)
			b := grid.New(disc)
			b.Fill(-1)
			sw := physics.NewShallowWater(physics.Params[float64]{Gravity: 1, BathymetryAverage: -1}, physics.Consts[float64]{b})
			stepper, err := integrators.New[float64](name, sw)
			Expect(err).NotTo(HaveOccurred())

			u := physics.NewState(disc)
			u[physics.H].Fill(1)
			h, v := u[physics.H], u[physics.V]

			stepper.Step(&u, operators.New(disc), 1)

			Expect(u[physics.H].Data()).To(Equal([]float64{1, 1, 1, 1}))
			Expect(u[physics.V].Data()).To(Equal([]float64{0, 0, 0, 0}))
			Expect(u[physics.H]).To(BeIdenticalTo(h), "state must be updated in place")
			Expect(u[physics.V]).To(BeIdenticalTo(v))
		},
		Entry("euler", "euler"),
		Entry("rk2", "rk2"),
		Entry("rk4", "rk4"),
	)

	It("takes one Euler step by hand", func() {
		u := w.initial()
		k := w.sw.Derive(u, w.ops)
		want := u[physics.H].Add(k[physics.H].Scale(0.01))

		integrators.NewEuler[float64](w.sw).Step(&u, w.ops, 0.01)

		Expect(u[physics.H].Data()).To(Equal(want.Data()))
	})

	It("conserves mass", func() {
		for _, name := range integrators.Names() {
			stepper, err := integrators.New[float64](name, w.sw)
			Expect(err).NotTo(HaveOccurred())

			u := w.initial()
			u[physics.H].Assign(u[physics.H].AddScalar(2))
			m0 := w.sw.Mass(u)
			for i := 0; i < 50; i++ {
				stepper.Step(&u, w.ops, 0.005)
			}
			Expect(w.sw.Mass(u)).To(BeNumerically("~", m0, 1e-12), name)
		}
	})

	It("tracks the semi-discrete solution with RK4", func() {
		Expect(w.errorAt("rk4", 0.0025, 0.5)).To(BeNumerically("<", 5e-9))
	})

	DescribeTable("converges at the formal order",
		func(name string, dt float64, order float64) {
			final := 0.2
			coarse := w.errorAt(name, dt, final)
			fine := w.errorAt(name, dt/2, final)

			Expect(math.Log2(coarse / fine)).To(BeNumerically("~", order, 0.25))
		},
		Entry("euler", "euler", 0.01, 1.0),
		Entry("rk2", "rk2", 0.005, 2.0),
		Entry("rk4", "rk4", 0.01, 4.0),
	)

	It("steps float32 fields", func() {
		disc := grid.NewDisc[float32](10, 4)
		b := grid.New(disc)
		sw := physics.NewShallowWater(physics.Params[float32]{Gravity: 1, BathymetryAverage: -1}, physics.Consts[float32]{b})
		stepper, err := integrators.New[float32]("rk4", sw)
		Expect(err).NotTo(HaveOccurred())

		u := physics.NewState(disc)
		u[physics.H].Fill(1)
		stepper.Step(&u, operators.New(disc), 1)

		Expect(u[physics.H].Data()).To(Equal([]float32{1, 1, 1, 1}))
	})
})
