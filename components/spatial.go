// Package components defines ECS components and the shared 3D point type.
package components

import "math"

// Point3 is a position or direction in scene space.
type Point3 struct {
	X, Y, Z float64
}

// Add returns p+q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Scale returns p*s.
func (p Point3) Scale(s float64) Point3 {
	return Point3{p.X * s, p.Y * s, p.Z * s}
}

// Len returns the Euclidean length of p.
func (p Point3) Len() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// IsFinite reports whether every coordinate is finite.
func (p Point3) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Position represents an entity's world position.
type Position Point3

// Velocity represents an entity's per-frame displacement.
type Velocity Point3

// Rotation holds Euler angles in radians.
type Rotation Point3

// Spin is an angular rate per axis (radians per second).
type Spin Point3
