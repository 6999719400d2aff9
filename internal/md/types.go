package md

import (
	"fmt"
	"math"
)

// Vec3 is a 3-component real vector.
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// System holds the mutable state of all particles. The three slices always
// share the same length, fixed at allocation.
type System struct {
	Positions     []Vec3
	Velocities    []Vec3
	Accelerations []Vec3
}

// NewSystem allocates a zeroed system for n particles.
func NewSystem(n int) *System {
	return &System{
		Positions:     make([]Vec3, n),
		Velocities:    make([]Vec3, n),
		Accelerations: make([]Vec3, n),
	}
}

func (s *System) Len() int { return len(s.Positions) }

func (s *System) Clone() *System {
	c := NewSystem(s.Len())
	copy(c.Positions, s.Positions)
	copy(c.Velocities, s.Velocities)
	copy(c.Accelerations, s.Accelerations)
	return c
}

// IsValid reports whether every component of the system is finite.
func (s *System) IsValid() bool {
	for _, buf := range [][]Vec3{s.Positions, s.Velocities, s.Accelerations} {
		for _, v := range buf {
			for _, x := range v {
				if math.IsNaN(x) || math.IsInf(x, 0) {
					return false
				}
			}
		}
	}
	return true
}

// Mode selects the boundary condition of the simulation cell.
type Mode string

const (
	// Closed reflects particles at the cell faces by inverting the
	// offending velocity component.
	Closed Mode = "closed"
	// Open wraps particles to the opposite face. Declared but not
	// implemented; selecting it is a configuration error.
	Open Mode = "open"
)

// Params is the immutable configuration of a single run.
type Params struct {
	Particles      int
	Steps          int
	Dt             float64
	Epsilon        float64
	Sigma          float64
	Mass           float64
	VelocityStdDev float64
	Boundary       Mode
	Seed           int64
}

// DefaultParams mirrors the historical defaults of the simulator: 64
// particles in a 4x4x4 cell, microsecond timestep, LJ well depth 1 and
// characteristic length 0.1, unit mass.
func DefaultParams() Params {
	return Params{
		Particles:      64,
		Steps:          10000,
		Dt:             1e-6,
		Epsilon:        1.0,
		Sigma:          0.1,
		Mass:           1.0,
		VelocityStdDev: 2.0,
		Boundary:       Closed,
	}
}

// CubeSide returns the integer cube root of n, or false if none exists.
func CubeSide(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	s := int(math.Round(math.Cbrt(float64(n))))
	if s*s*s != n {
		return 0, false
	}
	return s, true
}

// Side returns the cell side length derived from the particle count.
func (p Params) Side() float64 {
	return math.Cbrt(float64(p.Particles))
}

// Validate rejects configurations the physics loop cannot run on. All
// violations are fatal; there is no degraded mode.
func (p Params) Validate() error {
	if _, ok := CubeSide(p.Particles); !ok {
		return fmt.Errorf("%w: got %d", ErrNotCube, p.Particles)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("md: dt must be positive, got %g", p.Dt)
	}
	if p.Steps < 0 {
		return fmt.Errorf("md: step count must be non-negative, got %d", p.Steps)
	}
	if p.Epsilon <= 0 || p.Sigma <= 0 {
		return fmt.Errorf("md: potential coefficients must be positive (epsilon=%g, sigma=%g)", p.Epsilon, p.Sigma)
	}
	if p.Mass <= 0 {
		return fmt.Errorf("md: mass must be positive, got %g", p.Mass)
	}
	if p.VelocityStdDev < 0 {
		return fmt.Errorf("md: velocity stddev must be non-negative, got %g", p.VelocityStdDev)
	}
	switch p.Boundary {
	case Closed:
	case Open:
		return ErrOpenBoundary
	default:
		return fmt.Errorf("md: unknown boundary mode %q", p.Boundary)
	}
	return nil
}

// Force computes accelerations from particle positions. Implementations are
// pure functions of their inputs: the position slice is read-only and the
// returned slice is freshly allocated on every call.
type Force interface {
	Accelerations(pos []Vec3) ([]Vec3, error)
}

// Boundary corrects positions and/or velocities of particles that have left
// the simulation cell. Implementations are stateless between invocations.
type Boundary interface {
	Apply(s *System)
}

// Metric accumulates a scalar diagnostic over the course of a run.
type Metric interface {
	Name() string
	Observe(s *System, step int, t float64)
	Value() float64
	Reset()
}

// Observer receives the system after every completed step. Implementations
// must not retain the passed system past the call.
type Observer interface {
	OnStep(s *System, step int, t float64)
}
