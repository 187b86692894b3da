// Package sim runs force laws through the integrator engine and summarizes
// the trajectories with metrics. A Batch runs independent simulations in
// parallel; each Simulator must belong to a single job.
package sim
