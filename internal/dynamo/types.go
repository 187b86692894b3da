package dynamo

import (
	"fmt"
	"math"
)

// State is the (position, velocity) pair of a one-dimensional oscillator.
// For angular systems it holds (angle, angular velocity).
type State [2]float64

func NewState(x, v float64) State { return State{x, v} }

func (s State) X() float64 { return s[0] }
func (s State) V() float64 { return s[1] }

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return math.Hypot(s[0], s[1])
}

func (s State) Add(other State) State {
	return State{s[0] + other[0], s[1] + other[1]}
}

func (s State) Scale(factor float64) State {
	return State{s[0] * factor, s[1] * factor}
}

func (s State) Sub(other State) State {
	return State{s[0] - other[0], s[1] - other[1]}
}

func (s State) String() string {
	return fmt.Sprintf("(%g, %g)", s[0], s[1])
}

// ForceLaw maps (t, state) to d(state)/dt. Implementations must be pure:
// the first component of the result is always state[1].
type ForceLaw interface {
	Derive(t float64, s State) State
}

// Hamiltonian is implemented by force laws that expose a mechanical energy.
type Hamiltonian interface {
	Energy(t float64, s State) float64
}

// Configurable exposes named physical constants for overrides.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Stepper advances a state by one fixed step of size dt starting at time t.
type Stepper interface {
	Step(f ForceLaw, s State, t, dt float64) State
}

// Trajectory is the sequence of states produced for a TimeGrid, index-aligned with it.
type Trajectory []State

// Positions returns the first component of every state.
func (tr Trajectory) Positions() []float64 {
	out := make([]float64, len(tr))
	for i, s := range tr {
		out[i] = s[0]
	}
	return out
}

// Velocities returns the second component of every state.
func (tr Trajectory) Velocities() []float64 {
	out := make([]float64, len(tr))
	for i, s := range tr {
		out[i] = s[1]
	}
	return out
}

func (tr Trajectory) Final() State {
	if len(tr) == 0 {
		return State{}
	}
	return tr[len(tr)-1]
}
