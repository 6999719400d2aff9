// Package initial populates a fresh particle system: lattice positions and
// normally distributed starting velocities.
package initial

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mdlab-go/mdsim/internal/md"
)

// Lattice places n particles on the integer lattice points of a cube of side
// cbrt(n), filling x fastest, then y, then z. The placement is fully
// deterministic.
func Lattice(n int) ([]md.Vec3, error) {
	side, ok := md.CubeSide(n)
	if !ok {
		return nil, fmt.Errorf("%w: got %d", md.ErrNotCube, n)
	}

	pos := make([]md.Vec3, n)
	i := 0
	for z := 0; z < side; z++ {
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				pos[i] = md.Vec3{float64(x), float64(y), float64(z)}
				i++
			}
		}
	}
	return pos, nil
}

// Velocities draws one sample per particle per spatial component from a
// normal distribution with mean 0 and the given standard deviation. The
// source is seeded explicitly so runs are reproducible.
//
// This is not an equilibrated-ensemble generator: the draws do not target a
// system temperature. A temperature-coupled sampler would be a separate
// feature; the only knob here is stddev.
func Velocities(n int, stddev float64, seed int64) []md.Vec3 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: stddev,
		Src:   rand.NewSource(uint64(seed)),
	}

	vel := make([]md.Vec3, n)
	for i := range vel {
		vel[i] = md.Vec3{dist.Rand(), dist.Rand(), dist.Rand()}
	}
	return vel
}

// NewSystem allocates a system with lattice positions and sampled
// velocities. Accelerations are left zeroed; the simulator seeds them with
// one force evaluation before the first step.
func NewSystem(p md.Params) (*md.System, error) {
	pos, err := Lattice(p.Particles)
	if err != nil {
		return nil, err
	}

	s := md.NewSystem(p.Particles)
	copy(s.Positions, pos)
	copy(s.Velocities, Velocities(p.Particles, p.VelocityStdDev, p.Seed))
	return s, nil
}
