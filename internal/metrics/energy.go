package metrics

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Energy is the mean mechanical energy over the observed states.
type Energy struct {
	name        string
	law         dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewEnergy(law dynamo.Hamiltonian) *Energy {
	return &Energy{
		name: "energy",
		law:  law,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(t float64, s dynamo.State) {
	e.totalEnergy += e.law.Energy(t, s)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure from the initial energy. When
// the initial energy is zero the drift is absolute.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
	law           dynamo.Hamiltonian
}

func NewEnergyDrift(law dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		law:  law,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64, s dynamo.State) {
	energy := e.law.Energy(t, s)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	drift := math.Abs(energy - e.initialEnergy)
	if e.initialEnergy != 0 {
		drift /= math.Abs(e.initialEnergy)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Final is the energy of the last observed state.
func (e *EnergyDrift) Final() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
