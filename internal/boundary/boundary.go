// Package boundary enforces simulation cell boundary conditions.
package boundary

import (
	"fmt"

	"github.com/mdlab-go/mdsim/internal/md"
)

// Closed reflects particles at the faces of the cell [Low, High]^3 by
// inverting the offending velocity component. Positions are never clamped:
// a particle may sit outside the cell for a few steps until its reversed
// velocity carries it back in. The handler is stateless.
type Closed struct {
	Low  float64
	High float64
}

// NewClosed builds the handler for the cubic cell derived from the particle
// count, one corner at the origin.
func NewClosed(p md.Params) *Closed {
	return &Closed{Low: 0, High: p.Side()}
}

func (c *Closed) Apply(s *md.System) {
	for i, pos := range s.Positions {
		// Axes are independent: a corner exit flips several components.
		for k := 0; k < 3; k++ {
			if pos[k] < c.Low || pos[k] > c.High {
				s.Velocities[i][k] = -s.Velocities[i][k]
			}
		}
	}
}

// New returns the handler for the configured boundary mode. The open mode
// is declared but unimplemented and must never degrade to closed behavior.
func New(p md.Params) (md.Boundary, error) {
	switch p.Boundary {
	case md.Closed:
		return NewClosed(p), nil
	case md.Open:
		return nil, md.ErrOpenBoundary
	default:
		return nil, fmt.Errorf("boundary: unknown mode %q", p.Boundary)
	}
}
