package dynamo

import "math"

// uniformTol is the relative tolerance used when checking explicit grid points for a constant step.
const uniformTol = 1e-9

// TimeGrid is a uniform sequence of simulation instants. Point i is Start + i*Dt,
// matching numpy's arange, so the grid covers [Start, End) for a half-open interval.
type TimeGrid struct {
	Start float64
	Dt    float64
	N     int
}

// NewTimeGrid builds the grid covering [start, end) with step dt.
func NewTimeGrid(start, end, dt float64) (TimeGrid, error) {
	if err := checkStep(dt); err != nil {
		return TimeGrid{}, err
	}
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return TimeGrid{}, &InvalidGridError{Index: -1, Reason: "non-finite time bounds"}
	}
	n := int(math.Ceil((end - start) / dt))
	g := TimeGrid{Start: start, Dt: dt, N: n}
	if err := g.Validate(); err != nil {
		return TimeGrid{}, err
	}
	return g, nil
}

// TimeGridFromPoints checks that ts is strictly increasing with a constant step
// and returns the equivalent grid.
func TimeGridFromPoints(ts []float64) (TimeGrid, error) {
	if len(ts) == 0 {
		return TimeGrid{}, &InvalidGridError{Index: -1, Reason: "empty time grid"}
	}
	if len(ts) == 1 {
		return TimeGrid{Start: ts[0], Dt: 1, N: 1}, nil
	}

	dt := ts[1] - ts[0]
	for i := 1; i < len(ts); i++ {
		step := ts[i] - ts[i-1]
		if !(step > 0) {
			return TimeGrid{}, &InvalidGridError{Index: i, Reason: "time grid is not strictly increasing"}
		}
		if math.Abs(step-dt) > uniformTol*math.Max(math.Abs(dt), math.Abs(ts[i])) {
			return TimeGrid{}, &InvalidGridError{Index: i, Reason: "time grid step is not uniform"}
		}
	}

	g := TimeGrid{Start: ts[0], Dt: dt, N: len(ts)}
	return g, g.Validate()
}

// Validate reports an InvalidGridError for a non-positive step or an empty grid.
func (g TimeGrid) Validate() error {
	if err := checkStep(g.Dt); err != nil {
		return err
	}
	if g.N < 1 {
		return &InvalidGridError{Index: -1, Reason: "time grid has no points"}
	}
	return nil
}

func (g TimeGrid) At(i int) float64 {
	return g.Start + float64(i)*g.Dt
}

func (g TimeGrid) Len() int { return g.N }

// End is the last grid instant (not the exclusive bound).
func (g TimeGrid) End() float64 {
	return g.At(g.N - 1)
}

func (g TimeGrid) Points() []float64 {
	ts := make([]float64, g.N)
	for i := range ts {
		ts[i] = g.At(i)
	}
	return ts
}

func checkStep(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return &InvalidGridError{Index: -1, Reason: "step size is not finite"}
	}
	if dt <= 0 {
		return &InvalidGridError{Index: -1, Reason: "step size must be positive"}
	}
	return nil
}
