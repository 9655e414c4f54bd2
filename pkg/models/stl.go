package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/taigrr/termesh/pkg/math3d"
)

const (
	binaryHeaderSize = 84 // 80-byte comment header + 4-byte triangle count
	binaryRecordSize = 50 // normal (12) + 3 vertices (36) + attribute count (2)
)

// LoadSTL reads and decodes an STL file from disk. If the file itself does
// not name its solid, the mesh is named after the file.
func LoadSTL(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL file: %w", err)
	}

	mesh, err := DecodeSTL(data)
	if err != nil {
		return nil, err
	}
	if mesh.Name == "" {
		mesh.Name = filepath.Base(path)
	}
	return mesh, nil
}

// DecodeSTL decodes an STL byte payload, auto-detecting the dialect.
//
// A payload is treated as ASCII only when it starts with the bytes "solid",
// is valid UTF-8, and the ASCII grammar parses in full. Binary payloads may
// coincidentally start with solid-like header bytes, so a successful ASCII
// parse is the deciding signal, not the prefix alone; anything that fails
// the ASCII path falls through to the binary decoder.
func DecodeSTL(data []byte) (*Mesh, error) {
	if len(data) > 5 && bytes.HasPrefix(data, []byte("solid")) && utf8.Valid(data) {
		mesh, asciiErr := DecodeASCIISTL(data)
		if asciiErr == nil {
			return mesh, nil
		}
		mesh, binErr := DecodeBinarySTL(data)
		if binErr == nil {
			return mesh, nil
		}
		return nil, fmt.Errorf("unrecognized STL format (ascii: %v; binary: %v)", asciiErr, binErr)
	}
	return DecodeBinarySTL(data)
}

// STLFormat reports which dialect DecodeSTL would pick for a payload,
// "ascii" or "binary". The probe mirrors DecodeSTL's decision rule: a
// payload counts as ASCII only when the full grammar parses.
func STLFormat(data []byte) string {
	if len(data) > 5 && bytes.HasPrefix(data, []byte("solid")) && utf8.Valid(data) {
		if _, err := DecodeASCIISTL(data); err == nil {
			return "ascii"
		}
	}
	return "binary"
}

// DecodeBinarySTL decodes the fixed-layout binary STL dialect: an ignored
// 80-byte header, a little-endian uint32 triangle count, then one 50-byte
// record per triangle. The record's normal is stamped on all three vertices;
// the trailing attribute bytes are skipped.
func DecodeBinarySTL(data []byte) (*Mesh, error) {
	if len(data) < binaryHeaderSize {
		return nil, fmt.Errorf("binary STL too short: %d bytes", len(data))
	}

	count := binary.LittleEndian.Uint32(data[80:84])
	expected := uint64(binaryHeaderSize) + uint64(count)*binaryRecordSize
	if uint64(len(data)) < expected {
		return nil, fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expected, len(data))
	}

	mesh := NewMeshWithCapacity("", int(count))

	offset := binaryHeaderSize
	for i := uint32(0); i < count; i++ {
		normal := math3d.V3(
			float64(readFloat32LE(data[offset:])),
			float64(readFloat32LE(data[offset+4:])),
			float64(readFloat32LE(data[offset+8:])),
		)
		offset += 12

		var verts [3]Vertex
		for v := range verts {
			pos := math3d.V3(
				float64(readFloat32LE(data[offset:])),
				float64(readFloat32LE(data[offset+4:])),
				float64(readFloat32LE(data[offset+8:])),
			)
			offset += 12

			if !finite(pos.X) || !finite(pos.Y) || !finite(pos.Z) {
				return nil, fmt.Errorf("triangle %d: non-finite vertex position", i)
			}
			verts[v] = Vertex{Position: pos, Normal: normal}
		}
		offset += 2 // attribute byte count

		mesh.AddTriangle(NewTriangle(verts[0], verts[1], verts[2]))
	}

	return mesh, nil
}

// readFloat32LE reads a little-endian float32 from a byte slice.
func readFloat32LE(data []byte) float32 {
	bits := binary.LittleEndian.Uint32(data)
	return math.Float32frombits(bits)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// DecodeASCIISTL decodes the ASCII STL dialect:
//
//	solid [name]
//	  facet normal nx ny nz
//	    outer loop
//	      vertex x y z   (three times)
//	    endloop
//	  endfacet           (zero or more facets)
//	endsolid
//
// Keywords are case-sensitive and whitespace between tokens is free-form.
// Each facet's declared normal is stamped on its three vertices as-is, even
// when it disagrees with the winding; hand-authored files rely on that.
// The parse is all-or-nothing: a single malformed facet fails the whole
// payload. Tokens after endsolid are ignored.
func DecodeASCIISTL(data []byte) (*Mesh, error) {
	p := &stlParser{}
	p.tokenize(string(data))

	if err := p.expect("solid"); err != nil {
		return nil, err
	}

	// Everything up to the first facet (or endsolid) is the optional name.
	var nameParts []string
	for {
		tok, ok := p.peek()
		if !ok || tok.text == "facet" || tok.text == "endsolid" {
			break
		}
		nameParts = append(nameParts, tok.text)
		p.pos++
	}

	mesh := NewMesh(strings.Join(nameParts, " "))

	for {
		tok, ok := p.peek()
		if !ok || tok.text != "facet" {
			break
		}
		tri, err := p.facet()
		if err != nil {
			return nil, err
		}
		mesh.AddTriangle(tri)
	}

	if err := p.expect("endsolid"); err != nil {
		return nil, err
	}

	return mesh, nil
}

// stlToken is a whitespace-delimited token with its source line for errors.
type stlToken struct {
	text string
	line int
}

type stlParser struct {
	tokens []stlToken
	pos    int
}

func (p *stlParser) tokenize(s string) {
	line := 1
	start := -1
	startLine := 1

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\r', '\n':
			if start >= 0 {
				p.tokens = append(p.tokens, stlToken{text: s[start:i], line: startLine})
				start = -1
			}
			if c == '\n' {
				line++
			}
		default:
			if start < 0 {
				start = i
				startLine = line
			}
		}
	}
	if start >= 0 {
		p.tokens = append(p.tokens, stlToken{text: s[start:], line: startLine})
	}
}

func (p *stlParser) peek() (stlToken, bool) {
	if p.pos >= len(p.tokens) {
		return stlToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *stlParser) next() (stlToken, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *stlParser) expect(keyword string) error {
	tok, ok := p.next()
	if !ok {
		return fmt.Errorf("unexpected end of input: expected %q", keyword)
	}
	if tok.text != keyword {
		return fmt.Errorf("line %d: expected %q, found %q", tok.line, keyword, tok.text)
	}
	return nil
}

// float consumes one numeric token. Values are parsed at 32-bit precision
// so an ASCII file and its binary re-encoding decode to identical meshes.
func (p *stlParser) float() (float64, error) {
	tok, ok := p.next()
	if !ok {
		return 0, fmt.Errorf("unexpected end of input: expected number")
	}
	f, err := strconv.ParseFloat(tok.text, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: expected number, found %q", tok.line, tok.text)
	}
	return f, nil
}

func (p *stlParser) vec3() (math3d.Vec3, error) {
	x, err := p.float()
	if err != nil {
		return math3d.Vec3{}, err
	}
	y, err := p.float()
	if err != nil {
		return math3d.Vec3{}, err
	}
	z, err := p.float()
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(x, y, z), nil
}

func (p *stlParser) facet() (Triangle, error) {
	if err := p.expect("facet"); err != nil {
		return Triangle{}, err
	}
	if err := p.expect("normal"); err != nil {
		return Triangle{}, err
	}
	normal, err := p.vec3()
	if err != nil {
		return Triangle{}, err
	}
	if err := p.expect("outer"); err != nil {
		return Triangle{}, err
	}
	if err := p.expect("loop"); err != nil {
		return Triangle{}, err
	}

	var verts [3]Vertex
	for i := range verts {
		if err := p.expect("vertex"); err != nil {
			return Triangle{}, err
		}
		tokLine := 0
		if tok, ok := p.peek(); ok {
			tokLine = tok.line
		}
		pos, err := p.vec3()
		if err != nil {
			return Triangle{}, err
		}
		if !finite(pos.X) || !finite(pos.Y) || !finite(pos.Z) {
			return Triangle{}, fmt.Errorf("line %d: non-finite vertex position", tokLine)
		}
		verts[i] = Vertex{Position: pos, Normal: normal}
	}

	if err := p.expect("endloop"); err != nil {
		return Triangle{}, err
	}
	if err := p.expect("endfacet"); err != nil {
		return Triangle{}, err
	}

	return NewTriangle(verts[0], verts[1], verts[2]), nil
}
