package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// d3.Box is a 3d bounding box.
type Box r3.Box

// BoundingBox returns the smallest box containing every vector in the set.
// The set must not be empty.
func (a Set) BoundingBox() Box {
	bb := Box{Min: a[0], Max: a[0]}
	for _, v := range a[1:] {
		bb = bb.Include(v)
	}
	return bb
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}
