// Package dynamo provides the core data model for oscillator simulation.
//
// A second-order equation d²x/dt² = F(t, x, v) is rewritten as the pair
// dx/dt = v, dv/dt = F, so every quantity here is two-dimensional:
//
//   - [State]: (position, velocity) or (angle, angular velocity)
//   - [ForceLaw]: pure derivative function (t, State) -> d(State)/dt
//   - [TimeGrid]: uniform instants Start + i*Dt, i in [0, N)
//   - [Trajectory]: one State per grid point
//   - [Stepper]: fixed-step advance used by the integrator engine
//
// # Example
//
//	law, _ := physics.New("simple_harmonic")
//	grid, _ := dynamo.NewTimeGrid(0, 60, 0.01)
//	traj, err := integrators.Integrate(integrators.RK4Method, law, dynamo.NewState(0.1, 0), grid)
//
// # Errors
//
// [InvalidGridError], [NumericDivergenceError] and [SolverConvergenceError]
// unwrap to the package sentinels so callers can match with errors.Is.
package dynamo
