package render_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/soypat/cylmesh"
	"github.com/soypat/cylmesh/internal/d3"
	"github.com/soypat/cylmesh/render"
)

func mustShape(t *testing.T, segments int, radius, width float64) cylmesh.ShapeParameters {
	t.Helper()
	s, err := cylmesh.NewShape(segments, radius, width)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func countPrefixes(lines []string) (v, vn, f int) {
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "v "):
			v++
		case strings.HasPrefix(line, "vn "):
			vn++
		case strings.HasPrefix(line, "f "):
			f++
		}
	}
	return v, vn, f
}

func TestOBJSquarePrism(t *testing.T) {
	m := cylmesh.Generate(mustShape(t, 4, 1, 1))
	out := string(render.MarshalOBJ(m))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if lines[0] != "# OBJ file" {
		t.Errorf("header line %q", lines[0])
	}
	v, vn, f := countPrefixes(lines)
	if v != 10 || vn != 6 || f != 16 {
		t.Fatalf("got %d v, %d vn, %d f lines; want 10, 6, 16", v, vn, f)
	}
	if lines[1] != "v 1.0000 0.0000 0.5000" {
		t.Errorf("first vertex line %q", lines[1])
	}
	want := []string{
		"v 1.0000 0.0000 0.5000",
		"v 1.0000 0.0000 -0.5000",
		"v 0.0000 1.0000 0.5000",
		"v 0.0000 1.0000 -0.5000",
		"v -1.0000 0.0000 0.5000",
		"v -1.0000 0.0000 -0.5000",
		"v 0.0000 -1.0000 0.5000",
		"v 0.0000 -1.0000 -0.5000",
		"v 0.0000 0.0000 0.5000",
		"v 0.0000 0.0000 -0.5000",
		"vn 0.7071 0.7071 0.0000",
		"vn -0.7071 0.7071 0.0000",
		"vn -0.7071 -0.7071 0.0000",
		"vn 0.7071 -0.7071 0.0000",
		"vn 0.0000 0.0000 1.0000",
		"vn 0.0000 0.0000 -1.0000",
		"f 4//1 3//1 1//1",
		"f 2//1 4//1 1//1",
		"f 9//5 1//5 3//5",
		"f 10//6 4//6 2//6",
		"f 6//2 5//2 3//2",
		"f 4//2 6//2 3//2",
		"f 9//5 3//5 5//5",
		"f 10//6 6//6 4//6",
		"f 8//3 7//3 5//3",
		"f 6//3 8//3 5//3",
		"f 9//5 5//5 7//5",
		"f 10//6 8//6 6//6",
		"f 2//4 1//4 7//4",
		"f 8//4 2//4 7//4",
		"f 9//5 7//5 1//5",
		"f 10//6 2//6 8//6",
	}
	if len(lines)-1 != len(want) {
		t.Fatalf("got %d lines after header, want %d", len(lines)-1, len(want))
	}
	for i, w := range want {
		if lines[i+1] != w {
			t.Errorf("line %d: got %q, want %q", i+2, lines[i+1], w)
		}
	}
}

func TestOBJSectionOrder(t *testing.T) {
	out := string(render.MarshalOBJ(cylmesh.Generate(mustShape(t, 12, 2, 0.3))))
	section := 0 // 0 vertices, 1 normals, 2 faces
	for i, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n")[1:] {
		var s int
		switch {
		case strings.HasPrefix(line, "v "):
			s = 0
		case strings.HasPrefix(line, "vn "):
			s = 1
		case strings.HasPrefix(line, "f "):
			s = 2
		default:
			t.Fatalf("line %d: unexpected %q", i+2, line)
		}
		if s < section {
			t.Fatalf("line %d: %q out of order", i+2, line)
		}
		section = s
		if strings.Contains(line, "e") || strings.Contains(line, "-0.0000") || strings.Contains(line, " 0//") || strings.Contains(line, "//0") {
			t.Errorf("line %d: malformed %q", i+2, line)
		}
	}
}

func TestOBJDeterministic(t *testing.T) {
	s := mustShape(t, 97, 3.3, 0.01)
	a := render.MarshalOBJ(cylmesh.Generate(s))
	b := render.MarshalOBJ(cylmesh.Generate(s))
	if !bytes.Equal(a, b) {
		t.Fatal("output differs between identical runs")
	}
}

func TestOBJHeader(t *testing.T) {
	m := cylmesh.Generate(mustShape(t, 3, 1, 1))
	out := string(render.MarshalOBJ(m, render.WithHeader("cylinder\nsegments=3")))
	if !strings.HasPrefix(out, "# cylinder\n# segments=3\nv ") {
		t.Errorf("unexpected header in %q", out[:40])
	}
	out = string(render.MarshalOBJ(m, render.WithHeader("")))
	if !strings.HasPrefix(out, "v 1.0000 0.0000 0.5000\n") {
		t.Errorf("empty header not omitted: %q", out[:40])
	}
}

func TestOBJFixedPrecision(t *testing.T) {
	m := cylmesh.Mesh{
		Vertices: d3.Set{{X: 1e-9, Y: -1e-9, Z: 123456789.123456}, {X: -0.00005, Y: 2.5e-5, Z: -3}, {X: 0.99995}},
		Normals:  d3.Set{{Z: 1}},
		Faces:    []cylmesh.Face{{{Vertex: 1, Normal: 1}, {Vertex: 2, Normal: 1}, {Vertex: 3, Normal: 1}}},
	}
	out := string(render.MarshalOBJ(m, render.WithHeader("")))
	want := "v 0.0000 0.0000 123456789.1235\n" +
		"v -0.0001 0.0000 -3.0000\n" +
		"v 1.0000 0.0000 0.0000\n" +
		"vn 0.0000 0.0000 1.0000\n" +
		"f 1//1 2//1 3//1\n"
	if out != want {
		t.Errorf("got\n%s\nwant\n%s", out, want)
	}
}

func TestOBJReadBack(t *testing.T) {
	for _, segments := range []int{3, 8, 45, 360} {
		s := mustShape(t, segments, 1.25, 0.5)
		m := cylmesh.Generate(s)
		got, err := render.ReadOBJ(bytes.NewReader(render.MarshalOBJ(m)))
		if err != nil {
			t.Fatal(err)
		}
		if err := got.Validate(); err != nil {
			t.Errorf("%d segments: parsed mesh invalid: %v", segments, err)
		}
		if len(got.Faces) != len(m.Faces) {
			t.Fatalf("%d segments: read %d faces, want %d", segments, len(got.Faces), len(m.Faces))
		}
		for i := range m.Faces {
			if got.Faces[i] != m.Faces[i] {
				t.Fatalf("%d segments: face %d read as %v, want %v", segments, i, got.Faces[i], m.Faces[i])
			}
		}
		for i := range m.Vertices {
			if !d3.EqualWithin(got.Vertices[i], m.Vertices[i], 5e-5) {
				t.Errorf("%d segments: vertex %d read as %v, want %v", segments, i, got.Vertices[i], m.Vertices[i])
			}
		}
		st := got.Stats()
		if math.Abs(st.Volume-s.PrismVolume()) > 1e-3 {
			t.Errorf("%d segments: volume of parsed mesh %g, want %g", segments, st.Volume, s.PrismVolume())
		}
	}
}

func TestReadOBJErrors(t *testing.T) {
	for _, input := range []string{
		"v 1 2\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 4//1\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//2\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nvn 0 0 1\nf 1//1 2//1 4//1 3//1\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
		"curv 0 1 2\n",
	} {
		if _, err := render.ReadOBJ(strings.NewReader(input)); err == nil {
			t.Errorf("expected error reading %q", input)
		}
	}
	m, err := render.ReadOBJ(strings.NewReader("# tri\no tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf -3//-1 -2//1 -1//1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}
