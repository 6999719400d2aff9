// Package analysis computes diagnostics from stored trajectories.
package analysis

import (
	"errors"

	"github.com/mdlab-go/mdsim/internal/md"
)

var ErrTooFewFrames = errors.New("analysis: need at least two frames")

// MSD computes the mean squared displacement of every frame relative to the
// first: msd[i] = <|r(t_i) - r(t_0)|^2> averaged over particles. A diffusing
// system grows linearly; a bound one plateaus.
func MSD(frames [][]md.Vec3) ([]float64, error) {
	if len(frames) < 2 {
		return nil, ErrTooFewFrames
	}

	ref := frames[0]
	out := make([]float64, len(frames)-1)

	for i, frame := range frames[1:] {
		if len(frame) != len(ref) {
			return nil, errors.New("analysis: frames have differing particle counts")
		}
		var sum float64
		for p := range frame {
			d := frame[p].Sub(ref[p])
			sum += d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
		}
		out[i] = sum / float64(len(ref))
	}
	return out, nil
}

// Displacement returns per-frame displacement magnitudes of one particle
// relative to the first frame.
func Displacement(frames [][]md.Vec3, particle int) ([]float64, error) {
	if len(frames) < 2 {
		return nil, ErrTooFewFrames
	}
	if particle < 0 || particle >= len(frames[0]) {
		return nil, errors.New("analysis: particle index out of range")
	}

	out := make([]float64, len(frames)-1)
	ref := frames[0][particle]
	for i, frame := range frames[1:] {
		out[i] = frame[particle].Sub(ref).Norm()
	}
	return out, nil
}
