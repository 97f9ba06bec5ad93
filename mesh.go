package cylmesh

import (
	"errors"
	"fmt"

	"github.com/soypat/cylmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Corner is one triangle corner. Both indices are 1-based positions into
// Mesh.Vertices and Mesh.Normals respectively.
type Corner struct {
	Vertex int
	Normal int
}

// Face is a flat-shaded triangle. Corners are ordered counter-clockwise when
// viewed from the direction its normal points to.
type Face [3]Corner

// Normal returns the 1-based normal index of the face, taken from its first corner.
func (f Face) Normal() int { return f[0].Normal }

// Mesh is an indexed triangle mesh with per-face normals.
type Mesh struct {
	Vertices []r3.Vec
	Normals  []r3.Vec
	Faces    []Face
}

// Triangle returns the vertex positions of the ith face.
func (m Mesh) Triangle(i int) [3]r3.Vec {
	f := m.Faces[i]
	return [3]r3.Vec{
		m.Vertices[f[0].Vertex-1],
		m.Vertices[f[1].Vertex-1],
		m.Vertices[f[2].Vertex-1],
	}
}

// FaceNormal returns the normal vector referenced by the ith face.
func (m Mesh) FaceNormal(i int) r3.Vec {
	return m.Normals[m.Faces[i].Normal()-1]
}

// Validate checks the mesh is well formed: vertices and normals are finite,
// every index is in range, face vertices are distinct, corners of a face
// share one normal, winding agrees with the referenced normal and no vertex
// or normal is left unreferenced.
func (m Mesh) Validate() error {
	if len(m.Faces) == 0 {
		return errors.New("mesh has no faces")
	}
	for i, v := range m.Vertices {
		if !d3.IsFinite(v) {
			return fmt.Errorf("vertex %d is not finite: %v", i+1, v)
		}
	}
	for i, n := range m.Normals {
		if !d3.IsFinite(n) {
			return fmt.Errorf("normal %d is not finite: %v", i+1, n)
		}
	}
	usedV := make([]bool, len(m.Vertices))
	usedN := make([]bool, len(m.Normals))
	for i, f := range m.Faces {
		n := f.Normal()
		for j, c := range f {
			if c.Vertex < 1 || c.Vertex > len(m.Vertices) {
				return fmt.Errorf("face %d corner %d: vertex index %d out of range [1, %d]", i+1, j, c.Vertex, len(m.Vertices))
			}
			if c.Normal < 1 || c.Normal > len(m.Normals) {
				return fmt.Errorf("face %d corner %d: normal index %d out of range [1, %d]", i+1, j, c.Normal, len(m.Normals))
			}
			if c.Normal != n {
				return fmt.Errorf("face %d: corners reference different normals %d and %d", i+1, n, c.Normal)
			}
			usedV[c.Vertex-1] = true
			usedN[c.Normal-1] = true
		}
		if f[0].Vertex == f[1].Vertex || f[1].Vertex == f[2].Vertex || f[2].Vertex == f[0].Vertex {
			return fmt.Errorf("face %d: repeated vertex index", i+1)
		}
		t := m.Triangle(i)
		if !(r3.Dot(d3.TriangleNormal(t[0], t[1], t[2]), m.FaceNormal(i)) > 0) {
			return fmt.Errorf("face %d: winding opposes normal %d", i+1, n)
		}
	}
	for i, used := range usedV {
		if !used {
			return fmt.Errorf("vertex %d not referenced by any face", i+1)
		}
	}
	for i, used := range usedN {
		if !used {
			return fmt.Errorf("normal %d not referenced by any face", i+1)
		}
	}
	return nil
}

// Stats summarizes mesh geometry.
type Stats struct {
	Vertices int
	Normals  int
	Faces    int
	Bounds   d3.Box
	// Area is the total surface area.
	Area float64
	// Volume is the signed enclosed volume. It is positive for a closed
	// mesh with outward facing triangles.
	Volume float64
}

// Stats computes counts, bounding box, surface area and enclosed volume.
func (m Mesh) Stats() Stats {
	st := Stats{
		Vertices: len(m.Vertices),
		Normals:  len(m.Normals),
		Faces:    len(m.Faces),
	}
	if len(m.Vertices) > 0 {
		st.Bounds = d3.Set(m.Vertices).BoundingBox()
	}
	for i := range m.Faces {
		t := m.Triangle(i)
		st.Area += d3.TriangleArea(t[0], t[1], t[2])
		// Signed volume of the tetrahedron formed with the origin.
		st.Volume += r3.Dot(t[0], r3.Cross(t[1], t[2]))
	}
	st.Volume /= 6
	return st
}
