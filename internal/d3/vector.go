package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector helpers not provided by gonum's r3 package.

// EqualWithin returns true if every component of a and b differ by at most tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// IsFinite reports whether all components of a are neither NaN nor infinite.
func IsFinite(a r3.Vec) bool {
	return !math.IsNaN(a.X) && !math.IsInf(a.X, 0) &&
		!math.IsNaN(a.Y) && !math.IsInf(a.Y, 0) &&
		!math.IsNaN(a.Z) && !math.IsInf(a.Z, 0)
}

// TriangleNormal returns the unit normal of the triangle abc following
// the right-hand rule: counter-clockwise vertices seen from the tip of
// the normal. Edges are normalized before the cross product so the result
// stays finite for very small or very large triangles.
func TriangleNormal(a, b, c r3.Vec) r3.Vec {
	return r3.Unit(r3.Cross(r3.Unit(r3.Sub(b, a)), r3.Unit(r3.Sub(c, a))))
}

// TriangleArea returns the area of the triangle abc.
func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// Set is a group of points.
type Set []r3.Vec
