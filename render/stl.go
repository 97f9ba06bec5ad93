package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/spatial/r3"
)

// CreateSTL writes the triangles read from r to path on fs as a binary
// STL file. The file is replaced atomically.
func CreateSTL(fs afero.Fs, path string, r Renderer) error {
	return writeAtomic(fs, path, func(w io.WriteSeeker) error {
		return streamSTL(w, r)
	})
}

// WriteSTL writes model triangles to a writer in binary STL file format.
func WriteSTL(w io.Writer, model []Triangle3) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{
		Count: uint32(len(model)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var b [stlTriangleSize]byte
	for _, triangle := range model {
		stlFromTriangle(triangle).put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

const (
	sizeOfSTLHeader   = 84
	stlTriangleSize   = 50
	trianglesInBuffer = 1 << 10
)

// streamSTL writes triangles from r as they are read, then seeks back to
// fill in the header once the triangle count is known.
func streamSTL(w io.WriteSeeker, r Renderer) error {
	if _, err := w.Seek(sizeOfSTLHeader, io.SeekStart); err != nil {
		return err
	}
	var (
		tbuf  [trianglesInBuffer]Triangle3
		bbuf  = make([]byte, stlTriangleSize*trianglesInBuffer)
		count uint32
	)
	for {
		nt, err := r.ReadTriangles(tbuf[:])
		for i, triangle := range tbuf[:nt] {
			stlFromTriangle(triangle).put(bbuf[i*stlTriangleSize:])
		}
		if _, werr := w.Write(bbuf[:nt*stlTriangleSize]); werr != nil {
			return werr
		}
		count += uint32(nt)
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
	}
	if count == 0 {
		return errors.New("renderer produced no triangles")
	}
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, &stlHeader{Count: count})
}

// ReadSTL reads a binary STL file. Triangles whose stored normal does not
// match the normal calculated from their vertices are returned along with
// an error wrapping ErrNormalMismatch.
func ReadSTL(r io.Reader) (output []Triangle3, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.New("STL header read failed: " + err.Error())
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf            [stlTriangleSize]byte
		d              stlTriangle
		i              int
		normMismatches int
	)
	defer func() {
		if readErr != nil && !errors.Is(readErr, ErrNormalMismatch) {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i+1, header.Count, readErr)
		}
	}()
	output = make([]Triangle3, 0, header.Count)
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, ErrNormalMismatch) {
				return nil, err
			}
			normMismatches++
			readErr = fmt.Errorf("%d triangles: %w", normMismatches, err)
		}
		output = append(output, d.toTriangle3())
	}
	return output, readErr
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func stlFromTriangle(t Triangle3) stlTriangle {
	return stlTriangle{
		Normal:  f32From3(t.Normal()),
		Vertex1: f32From3(t.V[0]),
		Vertex2: f32From3(t.V[1]),
		Vertex3: f32From3(t.V[2]),
	}
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
	// no attributes supported.
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

// ErrNormalMismatch is returned by ReadSTL when a stored triangle normal
// does not agree with the winding of its vertices.
var ErrNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")

func (t stlTriangle) validate() error {
	const epsilon = 1e-12
	const normTol = 5e-2
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if t.toTriangle3().Degenerate(epsilon) {
		return errors.New("triangle is degenerate")
	}
	if !equalWithin3F32(t.normalFromVertices(), t.Normal, normTol) {
		return ErrNormalMismatch
	}
	return nil
}

func r3From3F32(f [3]float32) r3.Vec {
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

func f32From3(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func (t stlTriangle) normalFromVertices() [3]float32 {
	return f32From3(t.toTriangle3().Normal())
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func (d stlTriangle) toTriangle3() Triangle3 {
	return Triangle3{V: [3]r3.Vec{
		r3From3F32(d.Vertex1),
		r3From3F32(d.Vertex2),
		r3From3F32(d.Vertex3),
	}}
}
