package integrators

import "github.com/san-kum/oscsim/internal/dynamo"

// Verlet is velocity Verlet. The second force evaluation reuses the old
// velocity, so velocity-dependent forces are only first-order accurate.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(f dynamo.ForceLaw, s dynamo.State, t, dt float64) dynamo.State {
	a := f.Derive(t, s)[1]
	x := s[0] + s[1]*dt + 0.5*a*dt*dt
	aNew := f.Derive(t+dt, dynamo.State{x, s[1]})[1]
	return dynamo.State{x, s[1] + (a+aNew)*0.5*dt}
}
