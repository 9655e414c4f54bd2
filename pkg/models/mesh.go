// Package models provides 3D mesh representation and loading for termesh.
package models

import (
	"github.com/taigrr/termesh/pkg/math3d"
)

// Vertex is a position with its shading normal. Value type, copied freely.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Triangle is three ordered vertices. The ordering defines the winding and
// therefore the sign of the computed face normal.
type Triangle struct {
	V [3]Vertex
}

// NewTriangle creates a triangle from three vertices.
func NewTriangle(v0, v1, v2 Vertex) Triangle {
	return Triangle{V: [3]Vertex{v0, v1, v2}}
}

// CalculateNormal computes the face normal (v1-v0) x (v2-v0), normalized.
// Degenerate triangles (collinear or duplicate vertices) yield the zero
// vector rather than NaN; callers shade those at zero brightness.
func (t Triangle) CalculateNormal() math3d.Vec3 {
	edge1 := t.V[1].Position.Sub(t.V[0].Position)
	edge2 := t.V[2].Position.Sub(t.V[0].Position)
	return edge1.Cross(edge2).Normalize()
}

// Mesh is an ordered triangle soup. There is no deduplication or adjacency;
// decoders and generators append triangles and renderers iterate them.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// NewMeshWithCapacity creates an empty mesh with room for n triangles.
func NewMeshWithCapacity(name string, n int) *Mesh {
	return &Mesh{Name: name, Triangles: make([]Triangle, 0, n)}
}

// AddTriangle appends a triangle to the mesh.
func (m *Mesh) AddTriangle(t Triangle) {
	m.Triangles = append(m.Triangles, t)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Bounds computes the axis-aligned bounding box over all vertex positions.
// An empty mesh reports a zero box.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	if len(m.Triangles) == 0 {
		return math3d.Vec3{}, math3d.Vec3{}
	}

	min = m.Triangles[0].V[0].Position
	max = min
	for _, t := range m.Triangles {
		for _, v := range t.V {
			min = min.Min(v.Position)
			max = max.Max(v.Position)
		}
	}
	return min, max
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	min, max := m.Bounds()
	return min.Add(max).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	min, max := m.Bounds()
	return max.Sub(min)
}

// Transform applies a transformation matrix to every vertex in place.
// Positions go through the full transform; normals only pick up the
// rotation part and are re-normalized.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Triangles {
		for j := range m.Triangles[i].V {
			v := &m.Triangles[i].V[j]
			v.Position = mat.MulVec3(v.Position)
			v.Normal = mat.MulVec3Dir(v.Normal).Normalize()
		}
	}
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Triangles: make([]Triangle, len(m.Triangles)),
	}
	copy(clone.Triangles, m.Triangles)
	return clone
}

// Cube builds an axis-aligned cube of the given edge length, centered at
// the origin: 12 triangles, two per face, with outward face normals on
// every vertex. Useful as a procedural fixture when no model file is given.
func Cube(size float64) *Mesh {
	half := size / 2.0
	mesh := NewMeshWithCapacity("cube", 12)

	quad := func(a, b, c, d, n math3d.Vec3) {
		mesh.AddTriangle(NewTriangle(
			Vertex{Position: a, Normal: n},
			Vertex{Position: b, Normal: n},
			Vertex{Position: c, Normal: n},
		))
		mesh.AddTriangle(NewTriangle(
			Vertex{Position: a, Normal: n},
			Vertex{Position: c, Normal: n},
			Vertex{Position: d, Normal: n},
		))
	}

	// Front
	quad(
		math3d.V3(-half, -half, half),
		math3d.V3(half, -half, half),
		math3d.V3(half, half, half),
		math3d.V3(-half, half, half),
		math3d.V3(0, 0, 1),
	)
	// Back
	quad(
		math3d.V3(-half, -half, -half),
		math3d.V3(-half, half, -half),
		math3d.V3(half, half, -half),
		math3d.V3(half, -half, -half),
		math3d.V3(0, 0, -1),
	)
	// Top
	quad(
		math3d.V3(-half, half, -half),
		math3d.V3(-half, half, half),
		math3d.V3(half, half, half),
		math3d.V3(half, half, -half),
		math3d.V3(0, 1, 0),
	)
	// Bottom
	quad(
		math3d.V3(-half, -half, -half),
		math3d.V3(half, -half, -half),
		math3d.V3(half, -half, half),
		math3d.V3(-half, -half, half),
		math3d.V3(0, -1, 0),
	)
	// Right
	quad(
		math3d.V3(half, -half, -half),
		math3d.V3(half, half, -half),
		math3d.V3(half, half, half),
		math3d.V3(half, -half, half),
		math3d.V3(1, 0, 0),
	)
	// Left
	quad(
		math3d.V3(-half, -half, -half),
		math3d.V3(-half, -half, half),
		math3d.V3(-half, half, half),
		math3d.V3(-half, half, -half),
		math3d.V3(-1, 0, 0),
	)

	return mesh
}
