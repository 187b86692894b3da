package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Method names one of the step-advance algorithms.
type Method string

const (
	EulerCromerMethod Method = "euler-cromer"
	MidpointMethod    Method = "midpoint"
	RK4Method         Method = "rk4"
	JointRK4Method    Method = "rk4-joint"
	VerletMethod      Method = "verlet"
	AdaptiveMethod    Method = "adaptive"
)

var steppers = map[Method]func() dynamo.Stepper{
	EulerCromerMethod: func() dynamo.Stepper { return NewEulerCromer() },
	MidpointMethod:    func() dynamo.Stepper { return NewMidpoint() },
	RK4Method:         func() dynamo.Stepper { return NewRK4() },
	JointRK4Method:    func() dynamo.Stepper { return NewJointRK4() },
	VerletMethod:      func() dynamo.Stepper { return NewVerlet() },
}

// aliases maps alternative spellings onto canonical methods.
var aliases = map[string]Method{
	"euler":       EulerCromerMethod,
	"eulercromer": EulerCromerMethod,
	"rk45":        AdaptiveMethod,
	"dopri":       AdaptiveMethod,
}

// ParseMethod resolves a method name or alias.
func ParseMethod(name string) (Method, error) {
	m := Method(name)
	if _, ok := steppers[m]; ok || m == AdaptiveMethod {
		return m, nil
	}
	if m, ok := aliases[name]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown integrator: %s (available: %v)", name, Methods())
}

// Methods lists canonical method names in sorted order.
func Methods() []string {
	names := []string{string(AdaptiveMethod)}
	for m := range steppers {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}

// FixedStepper returns the stepper of a fixed-step method.
func FixedStepper(m Method) (dynamo.Stepper, error) {
	fn, ok := steppers[m]
	if !ok {
		return nil, fmt.Errorf("integrator %s has no fixed-step form", m)
	}
	return fn(), nil
}

// Run advances s0 along grid with a fixed-step method. The grid is validated
// before the trajectory is allocated; no error is raised once stepping starts.
func Run(st dynamo.Stepper, f dynamo.ForceLaw, s0 dynamo.State, grid dynamo.TimeGrid) (dynamo.Trajectory, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	traj := make(dynamo.Trajectory, grid.N)
	traj[0] = s0
	dt := grid.Dt
	for i := 0; i < grid.N-1; i++ {
		traj[i+1] = st.Step(f, traj[i], grid.At(i), dt)
	}
	return traj, nil
}

// Integrate computes the trajectory of s0 under f with the selected method.
// The adaptive method uses DefaultAdaptiveOptions.
func Integrate(m Method, f dynamo.ForceLaw, s0 dynamo.State, grid dynamo.TimeGrid) (dynamo.Trajectory, error) {
	if m == AdaptiveMethod {
		traj, _, err := NewRK45().Solve(f, s0, grid)
		return traj, err
	}
	st, err := FixedStepper(m)
	if err != nil {
		return nil, err
	}
	return Run(st, f, s0, grid)
}

// IntegratePoints is Integrate over explicit time points, which must be
// strictly increasing with a uniform step.
func IntegratePoints(m Method, f dynamo.ForceLaw, s0 dynamo.State, ts []float64) (dynamo.Trajectory, error) {
	grid, err := dynamo.TimeGridFromPoints(ts)
	if err != nil {
		return nil, err
	}
	return Integrate(m, f, s0, grid)
}
