package grid

import "math"

// Field holds one value per DoF of its Disc.
//
// The zero value is an unallocated field: no buffer, length 0. It becomes
// allocated through Setup, SetupLike or as the destination of Assign.
type Field[T Float] struct {
	disc *Disc[T]
	data []T
}

// New allocates a zeroed field with disc.NumDofs elements.
func New[T Float](disc *Disc[T]) *Field[T] {
	f := &Field[T]{}
	f.Setup(disc)
	return f
}

// NewLike allocates a zeroed field with the disc and length of other.
func NewLike[T Float](other *Field[T]) *Field[T] {
	f := &Field[T]{}
	f.SetupLike(other)
	return f
}

// Setup (re)allocates the buffer for disc. Previous contents are dropped.
func (f *Field[T]) Setup(disc *Disc[T]) {
	f.disc = disc
	f.data = make([]T, disc.NumDofs)
}

// SetupLike (re)allocates the buffer to match other, which must be allocated.
func (f *Field[T]) SetupLike(other *Field[T]) {
	if !other.Allocated() {
		unallocated("setup like")
	}
	f.disc = other.disc
	f.data = make([]T, len(other.data))
}

func (f *Field[T]) Disc() *Disc[T] { return f.disc }
func (f *Field[T]) Len() int       { return len(f.data) }
func (f *Field[T]) Allocated() bool {
	return f.data != nil
}

// Data exposes the underlying buffer. Writes through it mutate the field.
func (f *Field[T]) Data() []T { return f.data }

func (f *Field[T]) At(i int) T     { return f.data[i] }
func (f *Field[T]) Set(i int, v T) { f.data[i] = v }

func (f *Field[T]) SetZero() {
	clear(f.data)
}

func (f *Field[T]) Fill(v T) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Copy returns an independent field with the same disc and values.
func (f *Field[T]) Copy() *Field[T] {
	out := NewLike(f)
	copy(out.data, f.data)
	return out
}

// Assign copies src into f.
//
// If f is unallocated it is first allocated like src, taking over src's disc
// and length. If f is allocated, the lengths must match; a mismatch panics
// with SizeMismatch and f is left untouched.
func (f *Field[T]) Assign(src *Field[T]) {
	if !src.Allocated() {
		unallocated("assign from")
	}
	if !f.Allocated() {
		f.SetupLike(src)
	} else if len(f.data) != len(src.data) {
		mismatch("assign", len(f.data), len(src.data))
	}
	copy(f.data, src.data)
}

func (f *Field[T]) binary(op string, b *Field[T]) *Field[T] {
	if !f.Allocated() || !b.Allocated() {
		unallocated(op)
	}
	if len(f.data) != len(b.data) {
		mismatch(op, len(f.data), len(b.data))
	}
	return NewLike(f)
}

// Add returns f+b.
func (f *Field[T]) Add(b *Field[T]) *Field[T] {
	out := f.binary("add", b)
	for i := range out.data {
		out.data[i] = f.data[i] + b.data[i]
	}
	return out
}

// Sub returns f-b.
func (f *Field[T]) Sub(b *Field[T]) *Field[T] {
	out := f.binary("sub", b)
	for i := range out.data {
		out.data[i] = f.data[i] - b.data[i]
	}
	return out
}

// Mul returns the elementwise product f*b.
func (f *Field[T]) Mul(b *Field[T]) *Field[T] {
	out := f.binary("mul", b)
	for i := range out.data {
		out.data[i] = f.data[i] * b.data[i]
	}
	return out
}

// Neg returns -f.
func (f *Field[T]) Neg() *Field[T] {
	if !f.Allocated() {
		unallocated("neg")
	}
	out := NewLike(f)
	for i, v := range f.data {
		out.data[i] = -v
	}
	return out
}

// Scale returns s*f.
func (f *Field[T]) Scale(s T) *Field[T] {
	if !f.Allocated() {
		unallocated("scale")
	}
	out := NewLike(f)
	for i, v := range f.data {
		out.data[i] = s * v
	}
	return out
}

// AddScalar returns s+f.
func (f *Field[T]) AddScalar(s T) *Field[T] {
	if !f.Allocated() {
		unallocated("add scalar")
	}
	out := NewLike(f)
	for i, v := range f.data {
		out.data[i] = s + v
	}
	return out
}

func (f *Field[T]) Min() T {
	if len(f.data) == 0 {
		panic(&InvariantError{Kind: EmptyReduction, Op: "min"})
	}
	m := f.data[0]
	for _, v := range f.data[1:] {
		m = min(m, v)
	}
	return m
}

func (f *Field[T]) Max() T {
	if len(f.data) == 0 {
		panic(&InvariantError{Kind: EmptyReduction, Op: "max"})
	}
	m := f.data[0]
	for _, v := range f.data[1:] {
		m = max(m, v)
	}
	return m
}

func (f *Field[T]) Sum() T {
	var s T
	for _, v := range f.data {
		s += v
	}
	return s
}

// IsFinite reports whether no element is NaN or Inf.
func (f *Field[T]) IsFinite() bool {
	for _, v := range f.data {
		x := float64(v)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
