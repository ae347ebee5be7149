// Package physics provides the shallow-water model integrated by swesim.
//
// [ShallowWater] evaluates the linearized 1D equations on a periodic grid:
//
//	h_t = -h_bar * v_x
//	v_t = -g * h_x
//
// where h_bar is the representative depth |bathymetry average|. The unknowns
// are packed in a [State] (h, v); fields that are read but never advanced,
// such as bathymetry, live in [Consts].
//
// # Invariants
//
// The central-difference scheme conserves the discrete mass exactly up to
// rounding. The discrete energy [ShallowWater.Energy] is conserved by the
// semi-discrete system; explicit integrators add or remove energy at a rate
// set by their order:
//
//	sw := physics.NewShallowWater(params, consts)
//	m0, e0 := sw.Mass(u), sw.Energy(u)
package physics
