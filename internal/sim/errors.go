package sim

import (
	"errors"
	"fmt"
)

// ErrUnstable indicates a non-finite value appeared in the state.
var ErrUnstable = errors.New("sim: simulation unstable (state diverged)")

// SimulationError wraps an error with the step it occurred at.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
