package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/cylmesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOBJ parses triangle meshes written in the subset of Wavefront OBJ
// produced by WriteOBJ: v, vn and triangular f statements. Texture
// coordinate references in faces are accepted and discarded. Comments,
// blank lines and grouping statements (o, g, s, usemtl, mtllib) are ignored.
// Face indices are resolved to absolute 1-based indices and checked to be
// in range.
func ReadOBJ(r io.Reader) (cylmesh.Mesh, error) {
	var m cylmesh.Mesh
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			var v r3.Vec
			v, err = parseVec(fields[1:])
			m.Vertices = append(m.Vertices, v)
		case "vn":
			var n r3.Vec
			n, err = parseVec(fields[1:])
			m.Normals = append(m.Normals, n)
		case "f":
			var f cylmesh.Face
			f, err = parseFace(fields[1:], len(m.Vertices), len(m.Normals))
			m.Faces = append(m.Faces, f)
		case "vt", "o", "g", "s", "usemtl", "mtllib":
		default:
			err = fmt.Errorf("unsupported statement %q", fields[0])
		}
		if err != nil {
			return cylmesh.Mesh{}, fmt.Errorf("obj line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return cylmesh.Mesh{}, err
	}
	return m, nil
}

func parseVec(fields []string) (v r3.Vec, err error) {
	if len(fields) != 3 {
		return v, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	var c [3]float64
	for i, s := range fields {
		c[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return v, err
		}
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func parseFace(fields []string, nv, nn int) (f cylmesh.Face, err error) {
	if len(fields) != 3 {
		return f, fmt.Errorf("only triangles supported, got %d vertices", len(fields))
	}
	for i, s := range fields {
		refs := strings.Split(s, "/")
		if len(refs) != 3 {
			return f, fmt.Errorf("face vertex %q: want v//vn or v/vt/vn reference", s)
		}
		f[i].Vertex, err = resolveIndex(refs[0], nv)
		if err != nil {
			return f, fmt.Errorf("face vertex %q: %w", s, err)
		}
		f[i].Normal, err = resolveIndex(refs[2], nn)
		if err != nil {
			return f, fmt.Errorf("face normal %q: %w", s, err)
		}
	}
	return f, nil
}

// resolveIndex converts an OBJ reference into an absolute 1-based index.
// Negative references count back from the last element defined so far.
func resolveIndex(s string, n int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		idx += n + 1
	}
	if idx < 1 || idx > n {
		return 0, fmt.Errorf("index %s out of range [1, %d]", s, n)
	}
	return idx, nil
}
