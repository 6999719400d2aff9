// Package md provides the core data model for molecular dynamics runs.
//
// The package defines the fundamental types shared by the physics packages:
//
//   - [Vec3]: a 3-component real vector
//   - [System]: positions, velocities and accelerations of N particles
//   - [Params]: immutable run configuration
//   - [Force]: pairwise force engine interface
//   - [Boundary]: simulation cell boundary handler interface
//
// # Geometry
//
// A run simulates N particles in a cubic cell with one corner at the origin
// and side length cbrt(N). N must have an integer cube root; [Params.Validate]
// rejects anything else before a simulation starts.
//
// # Thread Safety
//
// A System is exclusively owned by the simulator driving it and is not safe
// for concurrent mutation. Force engines treat the position slice as
// read-only for the duration of one evaluation.
package md
