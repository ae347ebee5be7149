package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swesim/internal/benchmarks"
	"github.com/san-kum/swesim/internal/config"
	"github.com/san-kum/swesim/internal/integrators"
	"github.com/san-kum/swesim/internal/physics"
	"github.com/san-kum/swesim/internal/sim"
)

type recorder struct {
	steps []int
	times []float64
	final []bool
	hMax  []float64
}

func (r *recorder) Observe(s sim.Snapshot[float64]) error {
	r.steps = append(r.steps, s.Step)
	r.times = append(r.times, s.Time)
	r.final = append(r.final, s.Final)
	r.hMax = append(r.hMax, s.State[physics.H].Max())
	return nil
}

type counter struct{ n int }

func (c *counter) Name() string                        { return "count" }
func (c *counter) Observe(sim.Snapshot[float64]) error { c.n++; return nil }
func (c *counter) Value() float64                      { return float64(c.n) }
func (c *counter) Reset()                              { c.n = 0 }

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.DomainSize = 100
	cfg.NumDofs = 8
	cfg.Gravity = 1
	cfg.BathymetryAverage = -1
	cfg.Dt = 1
	cfg.SimTime = 10
	cfg.OutputEvery = 3
	cfg.Benchmark = benchmarks.SineWave
	cfg.WriteOutput = false
	return cfg
}

var _ = Describe("Simulator", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = smallConfig()
	})

	Describe("New", func() {
		It("rejects invalid configuration before stepping", func() {
			cfg.NumDofs = 0
			_, err := sim.New[float64](cfg)
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("rejects unknown integrators", func() {
			cfg.Integrator = "leapfrog"
			_, err := sim.New[float64](cfg)
			Expect(errors.Is(err, integrators.ErrUnknownIntegrator)).To(BeTrue())
		})

		It("rejects unknown benchmarks", func() {
			cfg.Benchmark = "dam_break"
			_, err := sim.New[float64](cfg)
			Expect(errors.Is(err, benchmarks.ErrUnknownBenchmark)).To(BeTrue())
		})

		It("derives the step plan from the config", func() {
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Dt()).To(Equal(1.0))
			Expect(s.NumTimesteps()).To(Equal(10))
			Expect(s.OutputEveryNth()).To(Equal(3))
			Expect(s.Disc().Dx).To(Equal(12.5))
			Expect(s.Consts()[physics.B].Max()).To(Equal(-1.0))
		})

		It("estimates dt from the wave speed", func() {
			cfg.Dt = -1
			cfg.Gravity = 4
			cfg.BathymetryAverage = -25
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Dt()).To(BeNumerically("~", 12.5/10, 1e-12))
		})
	})

	Describe("Step", func() {
		It("advances time by dt per step", func() {
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Time()).To(Equal(0.0))

			for i := 0; i < 3; i++ {
				Expect(s.Step()).To(Succeed())
				Expect(s.Time()).To(Equal(s.Dt() * float64(i+1)))
			}
			Expect(s.StepCount()).To(Equal(3))
		})

		It("reports divergence as ErrUnstable", func() {
			cfg.DomainSize = 1
			cfg.Integrator = "euler"
			cfg.SimTime = 5000
			cfg.OutputEvery = 5000
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Run(context.Background())
			Expect(err).To(MatchError(sim.ErrUnstable))

			var simErr *sim.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(BeNumerically(">", 0))
			Expect(simErr.Step).To(BeNumerically("<", 5000))
		})
	})

	Describe("Run", func() {
		It("emits the initial state, every nth step, and the final state", func() {
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())
			rec := &recorder{}
			s.AddObserver(rec)

			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.steps).To(Equal([]int{0, 1, 4, 7, 10}))
			Expect(rec.times).To(Equal([]float64{0, 1, 4, 7, 10}))
			Expect(rec.final).To(Equal([]bool{false, false, false, false, true}))
			Expect(res.Steps).To(Equal(10))
			Expect(res.Time).To(Equal(10.0))
			Expect(res.Snapshots).To(Equal(5))
		})

		It("adds a final snapshot off the output cadence", func() {
			cfg.SimTime = 6
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())
			rec := &recorder{}
			s.AddObserver(rec)

			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.steps).To(Equal([]int{0, 1, 4, 6}))
			Expect(rec.final[len(rec.final)-1]).To(BeTrue())
		})

		It("emits once when there is nothing to integrate", func() {
			cfg.SimTime = 0
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())
			rec := &recorder{}
			s.AddObserver(rec)

			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.steps).To(Equal([]int{0}))
			Expect(rec.final).To(Equal([]bool{true}))
			Expect(res.Steps).To(BeZero())
		})

		It("observes metrics after every step", func() {
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())
			s.AddMetric(&counter{})

			res, err := s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics).To(HaveKeyWithValue("count", 11.0))
		})

		It("stops between steps when the context is done", func() {
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())
			rec := &recorder{}
			s.AddObserver(rec)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := s.Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Steps).To(BeZero())
			Expect(rec.steps).To(Equal([]int{0}))
		})

		It("aborts when an observer fails", func() {
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())

			boom := errors.New("disk full")
			calls := 0
			s.AddObserver(sim.ObserverFunc[float64](func(sim.Snapshot[float64]) error {
				calls++
				if calls == 2 {
					return boom
				}
				return nil
			}))

			res, err := s.Run(context.Background())
			Expect(err).To(MatchError(boom))
			Expect(res.Steps).To(Equal(1))
		})

		It("moves the solitary wave to the right", func() {
			cfg = config.DefaultConfig()
			cfg.NumDofs = 256
			cfg.Benchmark = benchmarks.SolitaryWave
			cfg.SimTime = 300
			cfg.OutputEvery = 300
			s, err := sim.New[float64](cfg)
			Expect(err).NotTo(HaveOccurred())

			peak := func() int {
				h := s.State()[physics.H].Data()
				best := 0
				for i := range h {
					if h[i] > h[best] {
						best = i
					}
				}
				return best
			}
			start := peak()

			_, err = s.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(peak()).To(BeNumerically(">", start))
		})
	})

	It("resets to the initial condition", func() {
		s, err := sim.New[float64](cfg)
		Expect(err).NotTo(HaveOccurred())
		h0 := s.State()[physics.H].Copy()

		Expect(s.Step()).To(Succeed())
		Expect(s.State()[physics.H].Data()).NotTo(Equal(h0.Data()))

		Expect(s.Reset()).To(Succeed())
		Expect(s.StepCount()).To(BeZero())
		Expect(s.State()[physics.H].Data()).To(Equal(h0.Data()))
		Expect(s.State()[physics.V].Max()).To(Equal(0.0))
	})

	It("runs in single precision", func() {
		cfg.Precision = config.Float32
		s, err := sim.New[float32](cfg)
		Expect(err).NotTo(HaveOccurred())

		res, err := s.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(10))
		Expect(s.State().IsFinite()).To(BeTrue())
	})
})
