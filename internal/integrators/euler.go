package integrators

import "github.com/san-kum/oscsim/internal/dynamo"

// EulerCromer is the semi-implicit Euler method: the velocity is advanced
// first and the position uses the new velocity.
type EulerCromer struct{}

func NewEulerCromer() *EulerCromer {
	return &EulerCromer{}
}

func (e *EulerCromer) Step(f dynamo.ForceLaw, s dynamo.State, t, dt float64) dynamo.State {
	a := f.Derive(t, s)[1]
	v := s[1] + dt*a
	x := s[0] + dt*v
	return dynamo.State{x, v}
}

// Midpoint evaluates the slope at t+dt/2 from a half step taken with the
// initial slope, applied to both components, then updates position with the new velocity.
type Midpoint struct{}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) Step(f dynamo.ForceLaw, s dynamo.State, t, dt float64) dynamo.State {
	half := dt / 2
	k := f.Derive(t, s)[1]
	mid := dynamo.State{s[0] + half*k, s[1] + half*k}
	v := s[1] + dt*f.Derive(t+half, mid)[1]
	x := s[0] + dt*v
	return dynamo.State{x, v}
}
