package grid

// Float is the element type of every field.
type Float interface {
	~float32 | ~float64
}

// Disc gathers the spatial discretization shared by fields and operators.
type Disc[T Float] struct {
	DomainSize T
	NumDofs    int

	Dx    T
	InvDx T
	// HalfInvDx is 1/(2*Dx), the central-difference scaling.
	HalfInvDx T
}

func NewDisc[T Float](domainSize T, numDofs int) *Disc[T] {
	d := &Disc[T]{}
	d.Setup(domainSize, numDofs)
	return d
}

// Setup recomputes the geometry. domainSize and numDofs must be positive.
func (d *Disc[T]) Setup(domainSize T, numDofs int) {
	d.DomainSize = domainSize
	d.NumDofs = numDofs

	n := T(numDofs)
	d.Dx = domainSize / n
	d.InvDx = n / domainSize
	d.HalfInvDx = n / (domainSize * 2)
}

// X returns the coordinate of DoF i.
func (d *Disc[T]) X(i int) T {
	return d.Dx * T(i)
}
