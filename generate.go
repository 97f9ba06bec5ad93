package cylmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	frontNormal = r3.Vec{Z: 1}
	backNormal  = r3.Vec{Z: -1}
)

// Generate returns the capped cylinder mesh for s. It panics if s is not
// valid; use NewShape to obtain validated parameters.
func Generate(s ShapeParameters) Mesh {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	vertices := RingVertices(s)
	faces, normals := FacesAndNormals(s, vertices)
	return Mesh{Vertices: vertices, Normals: normals, Faces: faces}
}

// RingVertices returns the 2*s.Segments+2 mesh vertices. For ring step i the
// front vertex (z=+Width/2) is at zero-based position 2i and the back vertex
// (z=-Width/2) at 2i+1. The front and back cap centers follow the rings.
func RingVertices(s ShapeParameters) []r3.Vec {
	n := s.Segments
	halfw := s.Width / 2
	dtheta := 2 * math.Pi / float64(n)
	vertices := make([]r3.Vec, 0, 2*n+2)
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(float64(i) * dtheta)
		x, y := cos*s.Radius, sin*s.Radius
		vertices = append(vertices,
			r3.Vec{X: x, Y: y, Z: halfw},
			r3.Vec{X: x, Y: y, Z: -halfw},
		)
	}
	return append(vertices, r3.Vec{Z: halfw}, r3.Vec{Z: -halfw})
}

// FacesAndNormals builds the 4*s.Segments triangles and s.Segments+2 normals of
// the mesh from vertices laid out by RingVertices. Each ring step adds one
// side normal shared by the two side wall triangles of the step, followed by
// one triangle for each cap. The cap normals are shared by all cap triangles
// and are the last two normals.
func FacesAndNormals(s ShapeParameters, vertices []r3.Vec) ([]Face, []r3.Vec) {
	n := s.Segments
	if len(vertices) != 2*n+2 {
		panic("vertex count does not match ring layout")
	}
	// 1-based OBJ indices.
	front := func(i int) int { return 2*i + 1 }
	back := func(i int) int { return 2*i + 2 }
	frontCenter, backCenter := 2*n+1, 2*n+2
	frontN, backN := n+1, n+2

	faces := make([]Face, 0, 4*n)
	normals := make([]r3.Vec, 0, n+2)
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		f0 := vertices[front(i)-1]
		e1 := r3.Sub(vertices[back(i)-1], f0)    // along the axis, towards the back cap
		e2 := r3.Sub(vertices[front(next)-1], f0) // along the front ring
		// Unit edges keep the cross product finite for extreme radius and width.
		normals = append(normals, r3.Unit(r3.Cross(r3.Unit(e1), r3.Unit(e2))))
		side := len(normals)

		faces = append(faces,
			tri(side, back(next), front(next), front(i)),
			tri(side, back(i), back(next), front(i)),
			tri(frontN, frontCenter, front(i), front(next)),
			tri(backN, backCenter, back(next), back(i)),
		)
	}
	normals = append(normals, frontNormal, backNormal)
	return faces, normals
}

func tri(normal, a, b, c int) Face {
	return Face{{a, normal}, {b, normal}, {c, normal}}
}
