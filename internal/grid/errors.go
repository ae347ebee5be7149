package grid

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by InvariantError.
var (
	// ErrSizeMismatch indicates two fields of different length in one operation.
	ErrSizeMismatch = errors.New("grid: field size mismatch")

	// ErrUnallocated indicates an operation on a field without a buffer.
	ErrUnallocated = errors.New("grid: field not allocated")

	// ErrEmptyReduction indicates min/max on a field with no elements.
	ErrEmptyReduction = errors.New("grid: reduction on empty field")
)

type ErrorKind uint8

const (
	SizeMismatch ErrorKind = iota
	Unallocated
	EmptyReduction
)

func (k ErrorKind) String() string {
	switch k {
	case SizeMismatch:
		return "SizeMismatch"
	case Unallocated:
		return "Unallocated"
	case EmptyReduction:
		return "EmptyReduction"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// InvariantError is the panic value for malformed numeric state.
type InvariantError struct {
	Kind  ErrorKind
	Op    string
	Left  int
	Right int
}

func (e *InvariantError) Error() string {
	switch e.Kind {
	case SizeMismatch:
		return fmt.Sprintf("%s: %s (%d != %d)", e.Unwrap(), e.Op, e.Left, e.Right)
	default:
		return fmt.Sprintf("%s: %s", e.Unwrap(), e.Op)
	}
}

func (e *InvariantError) Unwrap() error {
	switch e.Kind {
	case SizeMismatch:
		return ErrSizeMismatch
	case Unallocated:
		return ErrUnallocated
	default:
		return ErrEmptyReduction
	}
}

func mismatch(op string, left, right int) {
	panic(&InvariantError{Kind: SizeMismatch, Op: op, Left: left, Right: right})
}

func unallocated(op string) {
	panic(&InvariantError{Kind: Unallocated, Op: op})
}
