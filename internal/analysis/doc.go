// Package analysis provides post-processing for oscillator trajectories.
//
//   - [PowerSpectrum], [Spectrum], [DominantFrequency]: frequency content
//   - [EstimateOrder]: empirical order of accuracy of an integration method
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [BifurcationDiagram]: stroboscopic parameter sweep
//   - [NewPhasePortrait], [CrossingSection], [StroboscopicSection]: phase space views
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, _ := analysis.LyapunovExponent(integrators.NewJointRK4(), law, s0, grid, 1e-8)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
