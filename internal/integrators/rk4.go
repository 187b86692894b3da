package integrators

import "github.com/san-kum/oscsim/internal/dynamo"

// RK4 applies the four-stage Runge-Kutta weights to the velocity only. Each
// stage offsets both components by the previous velocity increment, and the
// position is then advanced with the new velocity, as in Euler-Cromer.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(f dynamo.ForceLaw, s dynamo.State, t, dt float64) dynamo.State {
	x, v := s[0], s[1]
	half := dt / 2

	k1 := dt * f.Derive(t, s)[1]
	k2 := dt * f.Derive(t+half, dynamo.State{x + k1/2, v + k1/2})[1]
	k3 := dt * f.Derive(t+half, dynamo.State{x + k2/2, v + k2/2})[1]
	k4 := dt * f.Derive(t+dt, dynamo.State{x + k3, v + k3})[1]

	vNew := v + (1.0/6.0)*(k1+2*k2+2*k3+k4)
	return dynamo.State{x + dt*vNew, vNew}
}

// JointRK4 is the textbook RK4 on the full (x, v) vector.
type JointRK4 struct{}

func NewJointRK4() *JointRK4 {
	return &JointRK4{}
}

func (r *JointRK4) Step(f dynamo.ForceLaw, s dynamo.State, t, dt float64) dynamo.State {
	half := dt / 2

	k1 := f.Derive(t, s)
	k2 := f.Derive(t+half, s.Add(k1.Scale(half)))
	k3 := f.Derive(t+half, s.Add(k2.Scale(half)))
	k4 := f.Derive(t+dt, s.Add(k3.Scale(dt)))

	dt6 := dt / 6.0
	var result dynamo.State
	for i := range result {
		result[i] = s[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result
}
