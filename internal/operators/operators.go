// Package operators implements finite-difference operators on periodic grids.
package operators

import "github.com/san-kum/swesim/internal/grid"

// Operators computes differential operators for fields on one Disc.
type Operators[T grid.Float] struct {
	disc *grid.Disc[T]
}

func New[T grid.Float](disc *grid.Disc[T]) *Operators[T] {
	return &Operators[T]{disc: disc}
}

func (o *Operators[T]) Disc() *grid.Disc[T] { return o.disc }

// Diff1 approximates d/dx with the second order centered difference
//
//	out[i] = (f[i+1] - f[i-1]) / (2*dx)
//
// where indices wrap around the periodic domain. An unallocated f panics
// with grid.Unallocated.
func (o *Operators[T]) Diff1(f *grid.Field[T]) *grid.Field[T] {
	if !f.Allocated() {
		panic(&grid.InvariantError{Kind: grid.Unallocated, Op: "diff1"})
	}
	out := grid.NewLike(f)

	in, res := f.Data(), out.Data()
	s := o.disc.HalfInvDx
	n := len(in)

	for i := 0; i < n; i++ {
		im1 := i - 1
		if i == 0 {
			im1 = n - 1
		}
		ip1 := i + 1
		if i == n-1 {
			ip1 = 0
		}
		res[i] = (in[ip1] - in[im1]) * s
	}

	return out
}
