// Package metrics implements run metrics for the shallow water simulator.
package metrics

import (
	"math"

	"github.com/san-kum/swesim/internal/grid"
	"github.com/san-kum/swesim/internal/physics"
	"github.com/san-kum/swesim/internal/sim"
)

// Drift tracks the largest deviation of a conserved quantity from its
// first observed value, divided by the initial scale of that quantity. A zero
// scale gives the absolute deviation.
type Drift[T grid.Float] struct {
	name     string
	quantity func(u physics.State[T]) T
	scale    func(u physics.State[T]) T
	initial  float64
	norm     float64
	maxDrift float64
	samples  int
}

// NewMassDrift tracks the discrete integral of h, scaled by the integral of
// |h| so that states with near zero net mass do not divide by round-off.
func NewMassDrift[T grid.Float](model *physics.ShallowWater[T]) *Drift[T] {
	return &Drift[T]{name: "mass_drift", quantity: model.Mass, scale: absMass[T]}
}

// NewEnergyDrift tracks (g*h^2 + h_bar*v^2)/2 integrated over the domain.
func NewEnergyDrift[T grid.Float](model *physics.ShallowWater[T]) *Drift[T] {
	return &Drift[T]{name: "energy_drift", quantity: model.Energy, scale: model.Energy}
}

func absMass[T grid.Float](u physics.State[T]) T {
	var sum T
	for _, v := range u[physics.H].Data() {
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum * u[physics.H].Disc().Dx
}

func (d *Drift[T]) Name() string { return d.name }

func (d *Drift[T]) Observe(s sim.Snapshot[T]) error {
	q := float64(d.quantity(s.State))

	if d.samples == 0 {
		d.initial = q
		d.norm = math.Abs(float64(d.scale(s.State)))
	}
	d.samples++

	drift := math.Abs(q - d.initial)
	if d.norm != 0 {
		drift /= d.norm
	}
	d.maxDrift = math.Max(d.maxDrift, drift)
	return nil
}

func (d *Drift[T]) Value() float64 {
	return d.maxDrift
}

func (d *Drift[T]) Reset() {
	d.initial = 0
	d.norm = 0
	d.maxDrift = 0
	d.samples = 0
}
