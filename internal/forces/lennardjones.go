// Package forces implements pairwise force engines.
package forces

import (
	"fmt"
	"math"
	"sync"

	"github.com/mdlab-go/mdsim/internal/md"
)

// DefaultMinDistance is the separation floor below which a force evaluation
// is aborted rather than allowed to overflow.
const DefaultMinDistance = 1e-12

// LennardJones computes accelerations under the 12-6 potential
// U(r) = 4e[(s/r)^12 - (s/r)^6]. The pairwise force magnitude is
// 24e(2(s/r)^13 - (s/r)^7) along the separation vector: repulsive below the
// equilibrium distance s*2^(1/6), attractive above it.
type LennardJones struct {
	Epsilon float64
	Sigma   float64
	Mass    float64

	// MinDistance aborts the evaluation when two particles come closer
	// than this. Zero means DefaultMinDistance.
	MinDistance float64

	// Workers > 1 enables the sharded parallel evaluation.
	Workers int
}

// NewLennardJones builds an engine from run parameters.
func NewLennardJones(p md.Params) *LennardJones {
	return &LennardJones{
		Epsilon:     p.Epsilon,
		Sigma:       p.Sigma,
		Mass:        p.Mass,
		MinDistance: DefaultMinDistance,
	}
}

func (lj *LennardJones) minDistance() float64 {
	if lj.MinDistance > 0 {
		return lj.MinDistance
	}
	return DefaultMinDistance
}

// Equilibrium returns the separation at which the pairwise force vanishes.
func (lj *LennardJones) Equilibrium() float64 {
	return lj.Sigma * math.Pow(2, 1.0/6.0)
}

// Accelerations evaluates the net acceleration on every particle. It is a
// pure function of pos: the input is never written and the result is freshly
// allocated. Every unordered pair is evaluated once and applied with
// opposite signs to both members.
func (lj *LennardJones) Accelerations(pos []md.Vec3) ([]md.Vec3, error) {
	acc := make([]md.Vec3, len(pos))

	var err error
	if lj.Workers > 1 && len(pos) >= 2*lj.Workers {
		err = lj.accumulateParallel(pos, acc)
	} else {
		err = lj.accumulate(pos, acc, 0, len(pos))
	}
	if err != nil {
		return nil, err
	}

	for i, a := range acc {
		for _, x := range a {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: particle %d", md.ErrNonFinite, i)
			}
		}
	}
	return acc, nil
}

// PotentialEnergy returns the total 12-6 potential energy of a
// configuration. Degenerate separations contribute +Inf rather than an
// error; the force path is the one that polices the physical regime.
func (lj *LennardJones) PotentialEnergy(pos []md.Vec3) float64 {
	var e float64
	for i := range pos {
		for j := i + 1; j < len(pos); j++ {
			r := pos[i].Sub(pos[j]).Norm()
			sr := lj.Sigma / r
			sr3 := sr * sr * sr
			sr6 := sr3 * sr3
			e += 4 * lj.Epsilon * (sr6*sr6 - sr6)
		}
	}
	return e
}

// accumulate adds the contributions of all pairs (i, j) with lo <= i < hi
// and i < j < len(pos) into acc. Callers hand disjoint i ranges to distinct
// acc buffers, so the parallel path needs no locking.
func (lj *LennardJones) accumulate(pos []md.Vec3, acc []md.Vec3, lo, hi int) error {
	eps24 := 24 * lj.Epsilon
	invMass := 1 / lj.Mass
	minDist := lj.minDistance()

	for i := lo; i < hi; i++ {
		for j := i + 1; j < len(pos); j++ {
			dx := pos[i][0] - pos[j][0]
			dy := pos[i][1] - pos[j][1]
			dz := pos[i][2] - pos[j][2]

			r := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if r <= minDist {
				return fmt.Errorf("%w: particles %d and %d at r=%g", md.ErrCloseContact, i, j, r)
			}

			sr := lj.Sigma / r
			sr3 := sr * sr * sr
			sr6 := sr3 * sr3
			sr7 := sr6 * sr
			sr13 := sr6 * sr7

			// Acceleration per unit displacement component.
			f := eps24 * (2*sr13 - sr7) * invMass / r

			acc[i][0] += f * dx
			acc[i][1] += f * dy
			acc[i][2] += f * dz
			acc[j][0] -= f * dx
			acc[j][1] -= f * dy
			acc[j][2] -= f * dz
		}
	}
	return nil
}

// accumulateParallel shards the outer pair index over workers. Each worker
// accumulates into a private buffer; the buffers are summed afterwards, so
// pair evaluations never race. pos is read-only throughout.
func (lj *LennardJones) accumulateParallel(pos []md.Vec3, acc []md.Vec3) error {
	n := len(pos)
	workers := lj.Workers
	if workers > n/2 {
		workers = n / 2
	}

	partial := make([][]md.Vec3, workers)
	errs := make([]error, workers)
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		go func(w, lo, hi int) {
			defer wg.Done()
			partial[w] = make([]md.Vec3, n)
			errs[w] = lj.accumulate(pos, partial[w], lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	for _, buf := range partial {
		for i, a := range buf {
			acc[i][0] += a[0]
			acc[i][1] += a[1]
			acc[i][2] += a[2]
		}
	}
	return nil
}
