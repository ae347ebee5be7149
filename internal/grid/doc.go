// Package grid provides the discretized storage for 1D periodic fields.
//
// The package defines two types:
//
//   - [Disc]: domain geometry (size, number of DoFs, derived spacings)
//   - [Field]: a fixed-length buffer of DoF values bound to a [Disc]
//
// A single Disc is created per simulation and shared read-only by every
// Field and operator built against it. Fields own their buffer.
//
// # Invariant Violations
//
// Combining fields of different length, computing on an unallocated field or
// reducing an empty one are programming errors. They panic with an
// [*InvariantError] that wraps [ErrSizeMismatch], [ErrUnallocated] or
// [ErrEmptyReduction]:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        err, _ := r.(error)
//	        if errors.Is(err, grid.ErrSizeMismatch) { ... }
//	    }
//	}()
package grid
