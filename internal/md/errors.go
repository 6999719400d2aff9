package md

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrNotCube indicates a particle count without an integer cube root.
	ErrNotCube = errors.New("md: particle count must be a perfect cube")

	// ErrOpenBoundary indicates the unimplemented open boundary mode was
	// selected.
	ErrOpenBoundary = errors.New("md: open boundary mode is not supported")

	// ErrCloseContact indicates two particles at or below the minimum
	// resolvable separation.
	ErrCloseContact = errors.New("md: inter-particle distance below minimum")

	// ErrNonFinite indicates a NaN or Inf acceleration component.
	ErrNonFinite = errors.New("md: non-finite acceleration")
)

// StepError wraps an error with the step it occurred on.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
