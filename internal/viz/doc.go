// Package viz renders oscillator trajectories.
//
// Static output works on a time grid and a trajectory only:
//
//   - [TimeSeries], [Compare], [Spectrum]: asciigraph terminal plots
//   - [PhaseCanvas]: braille phase portrait
//   - [SaveTimeSeriesPNG], [SavePhasePNG], [SaveConvergencePNG]: gonum/plot figures
//
// The live view ([Model], [NewInteractiveApp]) is a Bubble Tea program that
// steps a force law in real time.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	T     - Cycle color themes
//	P     - Toggle phase portrait
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
package viz
