// Package metrics provides scalar diagnostics observed over a run.
package metrics

import (
	"math"

	"github.com/mdlab-go/mdsim/internal/forces"
	"github.com/mdlab-go/mdsim/internal/md"
)

// Kinetic tracks the instantaneous kinetic energy of the system.
type Kinetic struct {
	name string
	mass float64
	last float64
}

func NewKinetic(mass float64) *Kinetic {
	return &Kinetic{name: "kinetic_energy", mass: mass}
}

func (k *Kinetic) Name() string { return k.name }

func (k *Kinetic) Observe(s *md.System, step int, t float64) {
	k.last = kineticEnergy(s, k.mass)
}

func (k *Kinetic) Value() float64 { return k.last }
func (k *Kinetic) Reset()         { k.last = 0 }

// TotalEnergy tracks kinetic plus Lennard-Jones potential energy.
type TotalEnergy struct {
	name string
	lj   *forces.LennardJones
	last float64
}

func NewTotalEnergy(lj *forces.LennardJones) *TotalEnergy {
	return &TotalEnergy{name: "total_energy", lj: lj}
}

func (e *TotalEnergy) Name() string { return e.name }

func (e *TotalEnergy) Observe(s *md.System, step int, t float64) {
	e.last = kineticEnergy(s, e.lj.Mass) + e.lj.PotentialEnergy(s.Positions)
}

func (e *TotalEnergy) Value() float64 { return e.last }
func (e *TotalEnergy) Reset()         { e.last = 0 }

// EnergyDrift tracks the maximum relative deviation of total energy from its
// value at the first observation. For a symplectic integrator this stays
// bounded rather than growing secularly.
type EnergyDrift struct {
	name     string
	lj       *forces.LennardJones
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(lj *forces.LennardJones) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", lj: lj}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s *md.System, step int, t float64) {
	energy := kineticEnergy(s, e.lj.Mass) + e.lj.PotentialEnergy(s.Positions)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

func kineticEnergy(s *md.System, mass float64) float64 {
	var ke float64
	for _, v := range s.Velocities {
		ke += 0.5 * mass * (v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	return ke
}
