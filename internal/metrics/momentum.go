package metrics

import (
	"math"

	"github.com/mdlab-go/mdsim/internal/md"
)

// Momentum tracks the largest net momentum magnitude seen over a run. With
// symmetric pair forces and no boundary crossings this stays at its initial
// value; wall reflections change it step-wise.
type Momentum struct {
	name string
	mass float64
	max  float64
}

func NewMomentum(mass float64) *Momentum {
	return &Momentum{name: "net_momentum", mass: mass}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(s *md.System, step int, t float64) {
	var px, py, pz float64
	for _, v := range s.Velocities {
		px += m.mass * v[0]
		py += m.mass * v[1]
		pz += m.mass * v[2]
	}
	m.max = math.Max(m.max, math.Sqrt(px*px+py*py+pz*pz))
}

func (m *Momentum) Value() float64 { return m.max }
func (m *Momentum) Reset()         { m.max = 0 }
