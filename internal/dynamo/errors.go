package dynamo

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for trajectory computations.
var (
	// ErrInvalidGrid indicates a non-positive step, an empty grid or non-monotonic time points.
	ErrInvalidGrid = errors.New("dynamo: invalid time grid")

	// ErrDiverged indicates the trajectory left the configured sanity bound.
	ErrDiverged = errors.New("dynamo: trajectory diverged")

	// ErrSolverConvergence indicates the adaptive solver could not reach the requested accuracy.
	ErrSolverConvergence = errors.New("dynamo: adaptive solver failed to converge")
)

// InvalidGridError describes why a time grid was rejected. Index is the offending
// point for explicit grids, or -1 when the grid as a whole is invalid.
type InvalidGridError struct {
	Index  int
	Reason string
}

func (e *InvalidGridError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: %s at index %d", ErrInvalidGrid, e.Reason, e.Index)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidGrid, e.Reason)
}

func (e *InvalidGridError) Unwrap() error { return ErrInvalidGrid }

// NumericDivergenceError is advisory; steppers never raise it.
type NumericDivergenceError struct {
	Step  int
	Time  float64
	State State
	Bound float64
}

func (e *NumericDivergenceError) Error() string {
	return fmt.Sprintf("%v: step %d (t=%.4f) state %v exceeds bound %g", ErrDiverged, e.Step, e.Time, e.State, e.Bound)
}

func (e *NumericDivergenceError) Unwrap() error { return ErrDiverged }

// SolverConvergenceError carries the adaptive solver's diagnostic.
type SolverConvergenceError struct {
	Time     float64
	StepSize float64
	Message  string
}

func (e *SolverConvergenceError) Error() string {
	return fmt.Sprintf("%v at t=%.6g (h=%.3g): %s", ErrSolverConvergence, e.Time, e.StepSize, e.Message)
}

func (e *SolverConvergenceError) Unwrap() error { return ErrSolverConvergence }

// CheckDivergence returns a NumericDivergenceError for the first state whose
// components are non-finite or exceed bound in magnitude. A bound <= 0 only checks finiteness.
func CheckDivergence(tr Trajectory, g TimeGrid, bound float64) error {
	for i, s := range tr {
		over := bound > 0 && (math.Abs(s[0]) > bound || math.Abs(s[1]) > bound)
		if over || !s.IsValid() {
			return &NumericDivergenceError{Step: i, Time: g.At(i), State: s, Bound: bound}
		}
	}
	return nil
}
