package render

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/cylmesh"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultOBJHeader is the comment written on the first line of OBJ output.
const DefaultOBJHeader = "OBJ file"

// objPrecision is the fixed number of decimals written for every coordinate.
const objPrecision = 4

type objConfig struct {
	header string
}

// OBJOption configures OBJ output.
type OBJOption func(*objConfig)

// WithHeader sets the header comment. Each line of header is written as a
// separate comment line. An empty header omits the comment.
func WithHeader(header string) OBJOption {
	return func(c *objConfig) { c.header = header }
}

// WriteOBJ writes m to w in Wavefront OBJ format: all vertex lines, then
// all normal lines, then one face line per triangle with 1-based
// vertex//normal references.
func WriteOBJ(w io.Writer, m cylmesh.Mesh, opts ...OBJOption) error {
	cfg := objConfig{header: DefaultOBJHeader}
	for _, opt := range opts {
		opt(&cfg)
	}
	bw := bufio.NewWriter(w)
	if cfg.header != "" {
		for _, line := range strings.Split(cfg.header, "\n") {
			bw.WriteString("# ")
			bw.WriteString(strings.TrimRight(line, "\r"))
			bw.WriteByte('\n')
		}
	}
	var num []byte
	writeVec := func(prefix string, v r3.Vec) {
		bw.WriteString(prefix)
		for _, f := range [3]float64{v.X, v.Y, v.Z} {
			bw.WriteByte(' ')
			num = appendFixed(num[:0], f)
			bw.Write(num)
		}
		bw.WriteByte('\n')
	}
	for _, v := range m.Vertices {
		writeVec("v", v)
	}
	for _, n := range m.Normals {
		writeVec("vn", n)
	}
	for _, f := range m.Faces {
		bw.WriteByte('f')
		for _, c := range f {
			bw.WriteByte(' ')
			num = strconv.AppendInt(num[:0], int64(c.Vertex), 10)
			num = append(num, '/', '/')
			num = strconv.AppendInt(num, int64(c.Normal), 10)
			bw.Write(num)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// MarshalOBJ returns the OBJ text of m. See WriteOBJ.
func MarshalOBJ(m cylmesh.Mesh, opts ...OBJOption) []byte {
	var b bytes.Buffer
	WriteOBJ(&b, m, opts...) // bytes.Buffer writes do not fail.
	return b.Bytes()
}

// CreateOBJ writes m to path on fs in OBJ format. The file is replaced atomically.
func CreateOBJ(fs afero.Fs, path string, m cylmesh.Mesh, opts ...OBJOption) error {
	return WriteFileAtomic(fs, path, MarshalOBJ(m, opts...))
}

// appendFixed appends f with objPrecision decimals and no exponent.
// Values that round to zero are written without a sign.
func appendFixed(dst []byte, f float64) []byte {
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'f', objPrecision, 64)
	if dst[start] == '-' && isZeroDigits(dst[start+1:]) {
		dst = append(dst[:start], dst[start+1:]...)
	}
	return dst
}

func isZeroDigits(b []byte) bool {
	for _, c := range b {
		if c != '0' && c != '.' {
			return false
		}
	}
	return true
}
