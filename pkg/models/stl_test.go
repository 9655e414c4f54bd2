package models

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/termesh/pkg/math3d"
)

// encodeBinarySTL builds a well-formed binary STL payload from triangles,
// taking each triangle's record normal from its first vertex.
func encodeBinarySTL(t *testing.T, tris []Triangle) []byte {
	t.Helper()

	var buf bytes.Buffer
	header := make([]byte, 80)
	copy(header, "binary fixture")
	buf.Write(header)
	binary.Write(&buf, binary.LittleEndian, uint32(len(tris)))

	writeV3 := func(v math3d.Vec3) {
		binary.Write(&buf, binary.LittleEndian, float32(v.X))
		binary.Write(&buf, binary.LittleEndian, float32(v.Y))
		binary.Write(&buf, binary.LittleEndian, float32(v.Z))
	}

	for _, tri := range tris {
		writeV3(tri.V[0].Normal)
		for _, v := range tri.V {
			writeV3(v.Position)
		}
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func stampedTriangle(normal math3d.Vec3, p0, p1, p2 math3d.Vec3) Triangle {
	return NewTriangle(
		Vertex{Position: p0, Normal: normal},
		Vertex{Position: p1, Normal: normal},
		Vertex{Position: p2, Normal: normal},
	)
}

func TestDecodeASCIISTL(t *testing.T) {
	asciiSTL := `solid cube
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid cube`

	mesh, err := DecodeASCIISTL([]byte(asciiSTL))
	if err != nil {
		t.Fatalf("DecodeASCIISTL: %v", err)
	}

	if mesh.Name != "cube" {
		t.Errorf("Name = %q, want %q", mesh.Name, "cube")
	}
	if mesh.TriangleCount() != 2 {
		t.Fatalf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}

	tri := mesh.Triangles[0]
	if !v3Close(tri.V[1].Position, math3d.V3(1, 0, 0)) {
		t.Errorf("V[1].Position = %v, want (1, 0, 0)", tri.V[1].Position)
	}
	for i, v := range tri.V {
		if !v3Close(v.Normal, math3d.V3(0, 0, -1)) {
			t.Errorf("vertex %d normal = %v, want declared (0, 0, -1)", i, v.Normal)
		}
	}
}

func TestDecodeASCIISTLTrustsDeclaredNormal(t *testing.T) {
	// The declared normal disagrees with the winding and is not even unit
	// length. It must be stored verbatim, never recomputed or normalized.
	asciiSTL := `solid weird
  facet normal 0 0 -2
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid weird`

	mesh, err := DecodeASCIISTL([]byte(asciiSTL))
	if err != nil {
		t.Fatalf("DecodeASCIISTL: %v", err)
	}

	got := mesh.Triangles[0].V[0].Normal
	if !v3Close(got, math3d.V3(0, 0, -2)) {
		t.Errorf("stored normal = %v, want declared (0, 0, -2)", got)
	}

	// The geometric face normal still computes independently.
	if fn := mesh.Triangles[0].CalculateNormal(); !v3Close(fn, math3d.V3(0, 0, 1)) {
		t.Errorf("face normal = %v, want (0, 0, 1)", fn)
	}
}

func TestDecodeASCIISTLNames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
	}{
		{
			"unnamed",
			"solid\nendsolid",
			"",
		},
		{
			"single word",
			"solid part endsolid part",
			"part",
		},
		{
			"multi word",
			"solid my cool part\nendsolid",
			"my cool part",
		},
		{
			"trailing tokens ignored",
			"solid part\nendsolid part\nleftover junk",
			"part",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := DecodeASCIISTL([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeASCIISTL: %v", err)
			}
			if mesh.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", mesh.Name, tt.wantName)
			}
			if mesh.TriangleCount() != 0 {
				t.Errorf("TriangleCount = %d, want 0", mesh.TriangleCount())
			}
		})
	}
}

func TestDecodeASCIISTLScientificNotation(t *testing.T) {
	asciiSTL := `solid sci
  facet normal 0.0e0 0E0 1e0
    outer loop
      vertex 1.5e-2 -2.5E+1 0
      vertex 1e0 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid`

	mesh, err := DecodeASCIISTL([]byte(asciiSTL))
	if err != nil {
		t.Fatalf("DecodeASCIISTL: %v", err)
	}

	got := mesh.Triangles[0].V[0].Position
	if !v3Close(got, math3d.V3(0.015, -25, 0)) {
		t.Errorf("position = %v, want (0.015, -25, 0)", got)
	}
}

func TestDecodeASCIISTLErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			"uppercase keyword",
			"SOLID test\nendsolid",
			`expected "solid", found "SOLID"`,
		},
		{
			"missing normal keyword",
			"solid t\nfacet 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid",
			`expected "normal"`,
		},
		{
			"bad coordinate",
			"solid t\nfacet normal 0 0 1\nouter loop\nvertex 1 x 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid",
			`expected number, found "x"`,
		},
		{
			"two vertices",
			"solid t\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\nendsolid",
			`line 6: expected "vertex", found "endloop"`,
		},
		{
			"four vertices",
			"solid t\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nvertex 1 1 0\nendloop\nendfacet\nendsolid",
			`expected "endloop", found "vertex"`,
		},
		{
			"missing endsolid",
			"solid t\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet",
			`unexpected end of input: expected "endsolid"`,
		},
		{
			"truncated mid-vertex",
			"solid t\nfacet normal 0 0 1\nouter loop\nvertex 0 0",
			"unexpected end of input: expected number",
		},
		{
			"non-finite coordinate",
			"solid t\nfacet normal 0 0 1\nouter loop\nvertex NaN 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid",
			"non-finite vertex position",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeASCIISTL([]byte(tt.input))
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeBinarySTL(t *testing.T) {
	normal := math3d.V3(0, 0, 1)
	data := encodeBinarySTL(t, []Triangle{
		stampedTriangle(normal, math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)),
	})

	// Nonzero attribute bytes are ignored, not an error.
	data[len(data)-2] = 0xCD
	data[len(data)-1] = 0xAB

	mesh, err := DecodeBinarySTL(data)
	if err != nil {
		t.Fatalf("DecodeBinarySTL: %v", err)
	}

	if mesh.TriangleCount() != 1 {
		t.Fatalf("TriangleCount = %d, want 1", mesh.TriangleCount())
	}

	tri := mesh.Triangles[0]
	if !v3Close(tri.V[2].Position, math3d.V3(0, 1, 0)) {
		t.Errorf("V[2].Position = %v, want (0, 1, 0)", tri.V[2].Position)
	}
	for i, v := range tri.V {
		if !v3Close(v.Normal, normal) {
			t.Errorf("vertex %d normal = %v, want record normal %v", i, v.Normal, normal)
		}
	}
}

func TestDecodeBinarySTLCount(t *testing.T) {
	var tris []Triangle
	for i := 0; i < 7; i++ {
		f := float64(i)
		tris = append(tris, stampedTriangle(
			math3d.V3(0, 0, 1),
			math3d.V3(f, 0, 0), math3d.V3(f+1, 0, 0), math3d.V3(f, 1, 0),
		))
	}
	data := encodeBinarySTL(t, tris)

	if want := 84 + 50*len(tris); len(data) != want {
		t.Fatalf("fixture is %d bytes, want %d", len(data), want)
	}

	mesh, err := DecodeSTL(data)
	if err != nil {
		t.Fatalf("DecodeSTL: %v", err)
	}
	if mesh.TriangleCount() != len(tris) {
		t.Errorf("TriangleCount = %d, want %d", mesh.TriangleCount(), len(tris))
	}
}

func TestDecodeBinarySTLTruncation(t *testing.T) {
	data := encodeBinarySTL(t, []Triangle{
		stampedTriangle(math3d.V3(0, 0, 1), math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)),
	})

	// Every proper prefix must fail: a short file never silently yields a
	// short mesh.
	for n := 0; n < len(data); n++ {
		if _, err := DecodeSTL(data[:n]); err == nil {
			t.Fatalf("prefix of %d/%d bytes decoded without error", n, len(data))
		}
	}

	// Trailing junk beyond the declared records is tolerated.
	padded := append(append([]byte{}, data...), 0xDE, 0xAD)
	mesh, err := DecodeSTL(padded)
	if err != nil {
		t.Fatalf("DecodeSTL with trailing bytes: %v", err)
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("TriangleCount = %d, want 1", mesh.TriangleCount())
	}
}

func TestDecodeBinarySTLTooShort(t *testing.T) {
	_, err := DecodeBinarySTL(make([]byte, 83))
	if err == nil || !strings.Contains(err.Error(), "too short") {
		t.Errorf("error = %v, want a too-short failure", err)
	}

	// Exactly the header with a zero count is a valid empty mesh.
	mesh, err := DecodeBinarySTL(make([]byte, 84))
	if err != nil {
		t.Fatalf("DecodeBinarySTL: %v", err)
	}
	if mesh.TriangleCount() != 0 {
		t.Errorf("TriangleCount = %d, want 0", mesh.TriangleCount())
	}
}

func TestDecodeBinarySTLNonFinite(t *testing.T) {
	data := encodeBinarySTL(t, []Triangle{
		stampedTriangle(math3d.V3(0, 0, 1), math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)),
	})

	// Overwrite the first vertex's x coordinate with NaN. The record
	// layout puts it right after the 12-byte normal.
	binary.LittleEndian.PutUint32(data[84+12:], math.Float32bits(float32(math.NaN())))

	_, err := DecodeBinarySTL(data)
	if err == nil || !strings.Contains(err.Error(), "non-finite") {
		t.Errorf("error = %v, want a non-finite failure", err)
	}
}

func TestASCIIBinaryEquivalence(t *testing.T) {
	// The same triangle through both dialects must decode identically:
	// ASCII floats are parsed at 32-bit precision to match the binary
	// records.
	asciiSTL := `solid equal
  facet normal 0.1 0.7 0.3
    outer loop
      vertex 0.1 0.2 0.3
      vertex 1.5 0.2 0.3
      vertex 0.1 2.5 0.3
    endloop
  endfacet
endsolid`

	normal := math3d.V3(float64(float32(0.1)), float64(float32(0.7)), float64(float32(0.3)))
	binData := encodeBinarySTL(t, []Triangle{
		stampedTriangle(normal,
			math3d.V3(float64(float32(0.1)), float64(float32(0.2)), float64(float32(0.3))),
			math3d.V3(1.5, float64(float32(0.2)), float64(float32(0.3))),
			math3d.V3(float64(float32(0.1)), 2.5, float64(float32(0.3))),
		),
	})

	fromASCII, err := DecodeSTL([]byte(asciiSTL))
	if err != nil {
		t.Fatalf("decode ascii: %v", err)
	}
	fromBinary, err := DecodeSTL(binData)
	if err != nil {
		t.Fatalf("decode binary: %v", err)
	}

	if fromASCII.TriangleCount() != 1 || fromBinary.TriangleCount() != 1 {
		t.Fatalf("counts = %d, %d, want 1, 1", fromASCII.TriangleCount(), fromBinary.TriangleCount())
	}

	a, b := fromASCII.Triangles[0], fromBinary.Triangles[0]
	for i := range a.V {
		if !v3Close(a.V[i].Position, b.V[i].Position) {
			t.Errorf("vertex %d: ascii %v != binary %v", i, a.V[i].Position, b.V[i].Position)
		}
		if !v3Close(a.V[i].Normal, b.V[i].Normal) {
			t.Errorf("normal %d: ascii %v != binary %v", i, a.V[i].Normal, b.V[i].Normal)
		}
	}
}

func TestDecodeSTLDetection(t *testing.T) {
	t.Run("ascii payload", func(t *testing.T) {
		mesh, err := DecodeSTL([]byte("solid a\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 0 1 0\nendloop\nendfacet\nendsolid"))
		if err != nil {
			t.Fatalf("DecodeSTL: %v", err)
		}
		if mesh.Name != "a" || mesh.TriangleCount() != 1 {
			t.Errorf("got name %q with %d triangles", mesh.Name, mesh.TriangleCount())
		}
	})

	t.Run("binary with solid header", func(t *testing.T) {
		// A binary payload whose header bytes spell "solid" and whose
		// zero-filled record is valid UTF-8 end to end. The failed ASCII
		// parse must fall through to a successful binary decode.
		data := make([]byte, 84+50)
		for i := range data[:80] {
			data[i] = ' '
		}
		copy(data, "solid looking header")
		binary.LittleEndian.PutUint32(data[80:], 1)

		mesh, err := DecodeSTL(data)
		if err != nil {
			t.Fatalf("DecodeSTL: %v", err)
		}
		if mesh.TriangleCount() != 1 {
			t.Errorf("TriangleCount = %d, want 1", mesh.TriangleCount())
		}
	})

	t.Run("binary with invalid utf8", func(t *testing.T) {
		data := encodeBinarySTL(t, []Triangle{
			stampedTriangle(math3d.V3(0, 0, 1), math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)),
		})
		copy(data, "solid")
		data[20] = 0xFF // not UTF-8, so the ASCII path is never tried

		mesh, err := DecodeSTL(data)
		if err != nil {
			t.Fatalf("DecodeSTL: %v", err)
		}
		if mesh.TriangleCount() != 1 {
			t.Errorf("TriangleCount = %d, want 1", mesh.TriangleCount())
		}
	})

	t.Run("neither dialect", func(t *testing.T) {
		junk := []byte("solid " + strings.Repeat("words and more words ", 8))
		_, err := DecodeSTL(junk)
		if err == nil || !strings.Contains(err.Error(), "unrecognized STL format") {
			t.Errorf("error = %v, want unrecognized-format failure", err)
		}
	})
}

func TestSTLFormat(t *testing.T) {
	binData := encodeBinarySTL(t, []Triangle{
		stampedTriangle(math3d.V3(0, 0, 1), math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)),
	})
	solidHeader := append([]byte{}, binData...)
	copy(solidHeader, "solid")

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"ascii", []byte("solid a\nendsolid"), "ascii"},
		{"binary", binData, "binary"},
		{"binary with solid header", solidHeader, "binary"},
		{"empty", nil, "binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := STLFormat(tt.data); got != tt.want {
				t.Errorf("STLFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadSTL(t *testing.T) {
	dir := t.TempDir()

	t.Run("binary file named after path", func(t *testing.T) {
		data := encodeBinarySTL(t, []Triangle{
			stampedTriangle(math3d.V3(0, 0, 1), math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)),
		})
		path := filepath.Join(dir, "part.stl")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}

		mesh, err := LoadSTL(path)
		if err != nil {
			t.Fatalf("LoadSTL: %v", err)
		}
		if mesh.Name != "part.stl" {
			t.Errorf("Name = %q, want %q", mesh.Name, "part.stl")
		}
	})

	t.Run("ascii file keeps solid name", func(t *testing.T) {
		path := filepath.Join(dir, "named.stl")
		if err := os.WriteFile(path, []byte("solid teapot\nendsolid teapot"), 0o644); err != nil {
			t.Fatal(err)
		}

		mesh, err := LoadSTL(path)
		if err != nil {
			t.Fatalf("LoadSTL: %v", err)
		}
		if mesh.Name != "teapot" {
			t.Errorf("Name = %q, want %q", mesh.Name, "teapot")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSTL(filepath.Join(dir, "nope.stl"))
		if err == nil || !strings.Contains(err.Error(), "failed to read STL file") {
			t.Errorf("error = %v, want read failure", err)
		}
	})
}
