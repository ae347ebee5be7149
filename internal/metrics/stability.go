package metrics

import (
	"math"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/sim"
)

// Stability is the fraction of observed steps whose state stays within
// threshold in absolute value.
type Stability[T grid.Float] struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability[T grid.Float](threshold float64) *Stability[T] {
	return &Stability[T]{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability[T]) Name() string {
	return s.name
}

func (s *Stability[T]) Observe(snap sim.Snapshot[T]) error {
	s.samples++
	for _, f := range snap.State {
		if math.Max(math.Abs(float64(f.Min())), math.Abs(float64(f.Max()))) > s.threshold {
			s.violations++
			break
		}
	}
	return nil
}

func (s *Stability[T]) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability[T]) Reset() {
	s.violations = 0
	s.samples = 0
}
