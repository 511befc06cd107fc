// Package models provides mesh loading and edge extraction for wireplot.
package models

import (
	"errors"
	"math"
	"slices"

	"github.com/taigrr/wireplot/pkg/math3d"
)

// ErrNoGeometry is returned when a file or mesh holds no triangles.
var ErrNoGeometry = errors.New("no triangle geometry")

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []math3d.Vec3
	Faces    []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle with counter-clockwise (front-facing) vertex order.
type Face struct {
	V [3]int // Indices into Mesh.Vertices
}

// Edge is an undirected mesh edge with A < B.
type Edge struct {
	A, B int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]math3d.Vec3, 0),
		Faces:    make([]Face, 0),
	}
}

// AddTriangle appends three new vertices and a face joining them.
func (m *Mesh) AddTriangle(a, b, c math3d.Vec3) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, a, b, c)
	m.Faces = append(m.Faces, Face{V: [3]int{base, base + 1, base + 2}})
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the corner positions of face i.
func (m *Mesh) Triangle(i int) (a, b, c math3d.Vec3) {
	f := m.Faces[i].V
	return m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
}

// FaceNormal returns the unit normal of face i (zero for degenerate faces).
func (m *Mesh) FaceNormal(i int) math3d.Vec3 {
	a, b, c := m.Triangle(i)
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
	m.CalculateBounds()
}

// Fit centers the mesh on the origin and scales its largest dimension to size.
func (m *Mesh) Fit(size float64) {
	m.CalculateBounds()
	s := m.Size()
	maxDim := math.Max(s.X, math.Max(s.Y, s.Z))
	if maxDim <= 0 {
		return
	}
	scale := size / maxDim
	m.Transform(math3d.ScaleUniform(scale).Mul(math3d.Translate(m.Center().Negate())))
}

// WeldEpsilon is the distance under which loaded vertices are merged.
const WeldEpsilon = 1e-6

// Weld merges vertices closer than eps and drops faces that collapse.
// Formats such as STL repeat every vertex per face; welding restores the
// shared edges.
func (m *Mesh) Weld(eps float64) {
	type cell struct{ x, y, z int64 }
	quant := func(v math3d.Vec3) cell {
		return cell{
			int64(math.Round(v.X / eps)),
			int64(math.Round(v.Y / eps)),
			int64(math.Round(v.Z / eps)),
		}
	}

	index := make(map[cell]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	verts := make([]math3d.Vec3, 0, len(m.Vertices))

	for i, v := range m.Vertices {
		k := quant(v)
		if j, ok := index[k]; ok {
			remap[i] = j
			continue
		}
		index[k] = len(verts)
		remap[i] = len(verts)
		verts = append(verts, v)
	}

	faces := m.Faces[:0]
	for _, f := range m.Faces {
		a, b, c := remap[f.V[0]], remap[f.V[1]], remap[f.V[2]]
		if a == b || b == c || a == c {
			continue
		}
		faces = append(faces, Face{V: [3]int{a, b, c}})
	}

	m.Vertices = verts
	m.Faces = faces
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:      m.Name,
		Vertices:  slices.Clone(m.Vertices),
		Faces:     slices.Clone(m.Faces),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
}

func makeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Edges returns every unique edge in face order.
func (m *Mesh) Edges() []Edge {
	return m.FeatureEdges(0)
}

// FeatureEdges returns the unique edges worth drawing: boundary edges,
// edges shared by more than two faces, and edges whose two faces meet at
// more than angleDeg degrees. angleDeg <= 0 returns every edge.
func (m *Mesh) FeatureEdges(angleDeg float64) []Edge {
	faces := make(map[Edge][]int, len(m.Faces)*3/2)
	var order []Edge

	for i, f := range m.Faces {
		for k := range 3 {
			e := makeEdge(f.V[k], f.V[(k+1)%3])
			if _, ok := faces[e]; !ok {
				order = append(order, e)
			}
			faces[e] = append(faces[e], i)
		}
	}

	if angleDeg <= 0 {
		return order
	}

	cosLimit := math.Cos(angleDeg * math.Pi / 180)
	out := order[:0]
	for _, e := range order {
		adj := faces[e]
		if len(adj) != 2 {
			out = append(out, e)
			continue
		}
		if m.FaceNormal(adj[0]).Dot(m.FaceNormal(adj[1])) < cosLimit {
			out = append(out, e)
		}
	}
	return out
}
