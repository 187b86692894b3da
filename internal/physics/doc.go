// Package physics is the force-law registry.
//
// Every model is a [ForceLaw] tagged with a [Kind] from a closed set and
// implements [dynamo.ForceLaw], deriving (dx/dt, dv/dt) = (v, F(t, x, v)):
//
//   - simple_harmonic, anharmonic, damped, damped_driven
//   - chaotic_pendulum: damped_driven with x replaced by sin(x)
//   - duffing, van_der_pol
//   - rayleigh_lorentz and rayleigh_lorentz_decay: time-varying frequency
//
// Force laws also implement [dynamo.Configurable] for constant overrides and
// [dynamo.Hamiltonian] for energy monitoring:
//
//	law, _ := physics.NewWithParams("damped", map[string]float64{"beta": 0.1})
//	e := law.Energy(0, dynamo.NewState(0.2, 0))
package physics
