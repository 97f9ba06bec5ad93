package render

import (
	"io"

	"github.com/soypat/cylmesh"
	"github.com/soypat/cylmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Vertices are counter-clockwise when viewed
// from the side its normal points to.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle following the right-hand rule.
func (t Triangle3) Normal() r3.Vec {
	return d3.TriangleNormal(t.V[0], t.V[1], t.V[2])
}

// Degenerate returns true if two or more vertices of the triangle coincide within tol.
func (t Triangle3) Degenerate(tol float64) bool {
	return d3.EqualWithin(t.V[0], t.V[1], tol) ||
		d3.EqualWithin(t.V[1], t.V[2], tol) ||
		d3.EqualWithin(t.V[2], t.V[0], tol)
}

// Renderer streams triangles. ReadTriangles returns io.EOF once all
// triangles have been read.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

type meshRenderer struct {
	unread triangle3Buffer
}

// NewMeshRenderer returns a Renderer that reads the faces of m in order.
func NewMeshRenderer(m cylmesh.Mesh) Renderer {
	buf := make([]Triangle3, len(m.Faces))
	for i := range m.Faces {
		buf[i] = Triangle3{V: m.Triangle(i)}
	}
	return &meshRenderer{unread: triangle3Buffer{buf: buf}}
}

func (r *meshRenderer) ReadTriangles(t []Triangle3) (int, error) {
	if r.unread.Len() == 0 {
		return 0, io.EOF
	}
	return r.unread.Read(t), nil
}
