// Package cylmesh generates triangulated capped-cylinder meshes with
// flat-shaded face normals.
package cylmesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// MinSegments is the smallest ring step count that encloses a volume.
	MinSegments = 3
	// MaxSegments is the largest accepted ring step count.
	MaxSegments = 360
)

// Default shape used when no parameters are supplied.
const (
	DefaultSegments = 8
	DefaultRadius   = 1.0
	DefaultWidth    = 0.5
)

// Constraint names a ShapeParameters domain rule.
type Constraint string

// Constraints checked by NewShape, in checking order.
const (
	// ConstraintSegments requires MinSegments <= Segments <= MaxSegments.
	ConstraintSegments Constraint = "segments range"
	// ConstraintRadius requires a finite Radius > 0.
	ConstraintRadius Constraint = "radius positivity"
	// ConstraintWidth requires a finite Width > 0.
	ConstraintWidth Constraint = "width positivity"
)

// ErrInvalidShape is matched by every *InvalidShapeError with errors.Is.
var ErrInvalidShape = errors.New("invalid shape")

// InvalidShapeError is returned when shape parameters violate a Constraint.
type InvalidShapeError struct {
	Constraint Constraint
	Segments   int
	Radius     float64
	Width      float64
}

func (e *InvalidShapeError) Error() string {
	switch e.Constraint {
	case ConstraintSegments:
		return fmt.Sprintf("invalid shape: %s: segments must be in [%d, %d], got %d", e.Constraint, MinSegments, MaxSegments, e.Segments)
	case ConstraintRadius:
		return fmt.Sprintf("invalid shape: %s: radius must be > 0, got %g", e.Constraint, e.Radius)
	case ConstraintWidth:
		return fmt.Sprintf("invalid shape: %s: width must be > 0, got %g", e.Constraint, e.Width)
	}
	return "invalid shape: " + string(e.Constraint)
}

// Is reports whether target is ErrInvalidShape.
func (e *InvalidShapeError) Is(target error) bool { return target == ErrInvalidShape }

// ShapeParameters define a capped cylinder centered at the origin with its
// axis along Z. Radius is the distance from the axis to ring vertices and
// Width is the distance between both caps.
type ShapeParameters struct {
	Segments int
	Radius   float64
	Width    float64
}

// DefaultShape returns the shape used when no parameters are supplied.
func DefaultShape() ShapeParameters {
	return ShapeParameters{Segments: DefaultSegments, Radius: DefaultRadius, Width: DefaultWidth}
}

// NewShape returns validated ShapeParameters or an *InvalidShapeError naming
// the first violated constraint.
func NewShape(segments int, radius, width float64) (ShapeParameters, error) {
	s := ShapeParameters{Segments: segments, Radius: radius, Width: width}
	if err := s.Validate(); err != nil {
		return ShapeParameters{}, err
	}
	return s, nil
}

// Validate checks segment range, then radius and width positivity.
func (s ShapeParameters) Validate() error {
	var c Constraint
	switch {
	case s.Segments < MinSegments || s.Segments > MaxSegments:
		c = ConstraintSegments
	case !(s.Radius > 0) || math.IsInf(s.Radius, 1):
		c = ConstraintRadius
	case !(s.Width > 0) || math.IsInf(s.Width, 1):
		c = ConstraintWidth
	default:
		return nil
	}
	return &InvalidShapeError{Constraint: c, Segments: s.Segments, Radius: s.Radius, Width: s.Width}
}

// Distance returns the signed distance from p to the surface of the solid
// cylinder described by s. It is negative inside the solid.
func (s ShapeParameters) Distance(p r3.Vec) float64 {
	// Exact distance to a 2D box in the (radial, axial) half plane.
	dx := math.Hypot(p.X, p.Y) - s.Radius
	dz := math.Abs(p.Z) - s.Width/2
	if dx > 0 && dz > 0 {
		return math.Hypot(dx, dz)
	}
	return math.Max(dx, dz)
}

// Bounds returns the axis aligned bounding box of the cylinder.
func (s ShapeParameters) Bounds() r3.Box {
	d := r3.Vec{X: s.Radius, Y: s.Radius, Z: s.Width / 2}
	return r3.Box{Min: r3.Scale(-1, d), Max: d}
}

// PrismVolume returns the exact volume enclosed by the faceted mesh of s,
// which is a regular prism inscribed in the cylinder.
func (s ShapeParameters) PrismVolume() float64 {
	n := float64(s.Segments)
	return n / 2 * s.Radius * s.Radius * math.Sin(2*math.Pi/n) * s.Width
}
