package metrics

import "github.com/san-kum/oscsim/internal/dynamo"

// Metric accumulates a scalar summary while a trajectory is replayed.
type Metric interface {
	Name() string
	Observe(t float64, s dynamo.State)
	Value() float64
	Reset()
}

// Evaluate replays traj through every metric and collects their values by name.
func Evaluate(traj dynamo.Trajectory, grid dynamo.TimeGrid, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	for i, s := range traj {
		t := grid.At(i)
		for _, m := range ms {
			m.Observe(t, s)
		}
	}
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults returns the metrics reported for every run of law.
func Defaults(law dynamo.ForceLaw, bound float64) []Metric {
	ms := []Metric{NewAmplitude(), NewStability(bound)}
	if h, ok := law.(dynamo.Hamiltonian); ok {
		ms = append(ms, NewEnergy(h), NewEnergyDrift(h))
	}
	return ms
}
