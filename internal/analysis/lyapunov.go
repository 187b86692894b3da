package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run two nearby trajectories
// 2. Measure their divergence over one step and renormalize the separation
// 3. λ ≈ mean of ln(|δx(t+dt)|/|δx(t)|) per unit time
func LyapunovExponent(
	st dynamo.Stepper,
	f dynamo.ForceLaw,
	s0 dynamo.State,
	grid dynamo.TimeGrid,
	perturbation float64,
) (float64, error) {
	if err := grid.Validate(); err != nil {
		return 0, err
	}
	if !(perturbation > 0) {
		return 0, fmt.Errorf("analysis: perturbation must be positive, got %g", perturbation)
	}
	if grid.N < 2 {
		return 0, nil
	}

	x := s0
	xp := s0
	xp[0] += perturbation
	d0 := perturbation

	sumLog := 0.0
	for i := 0; i < grid.N-1; i++ {
		t := grid.At(i)
		x = st.Step(f, x, t, grid.Dt)
		xp = st.Step(f, xp, t, grid.Dt)

		sep := xp.Sub(x).Norm()
		if !x.IsValid() || !xp.IsValid() || math.IsNaN(sep) {
			return 0, &dynamo.NumericDivergenceError{Step: i + 1, Time: grid.At(i + 1), State: x}
		}
		if sep == 0 {
			// merged to rounding
			xp = x
			xp[0] += d0
			continue
		}

		sumLog += math.Log(sep / d0)
		xp = x.Add(xp.Sub(x).Scale(d0 / sep))
	}

	return sumLog / (float64(grid.N-1) * grid.Dt), nil
}
