package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/wireplot/pkg/math3d"
)

// cube returns a unit cube centered on the origin with 12 outward-facing
// triangles sharing 8 vertices.
func cube() *Mesh {
	m := NewMesh("cube")
	m.Vertices = []math3d.Vec3{
		{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: 0.5, Z: -0.5}, {X: -0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0.5}, {X: -0.5, Y: 0.5, Z: 0.5},
	}
	quads := [][4]int{
		{4, 5, 6, 7}, // +z
		{1, 0, 3, 2}, // -z
		{5, 1, 2, 6}, // +x
		{0, 4, 7, 3}, // -x
		{7, 6, 2, 3}, // +y
		{0, 1, 5, 4}, // -y
	}
	for _, q := range quads {
		m.Faces = append(m.Faces,
			Face{V: [3]int{q[0], q[1], q[2]}},
			Face{V: [3]int{q[0], q[2], q[3]}},
		)
	}
	m.CalculateBounds()
	return m
}

func TestCubeOutwardNormals(t *testing.T) {
	m := cube()
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		centroid := a.Add(b).Add(c).Scale(1.0 / 3)
		if m.FaceNormal(i).Dot(centroid) <= 0 {
			t.Errorf("face %d normal %v points inward", i, m.FaceNormal(i))
		}
	}
}

func TestEdges(t *testing.T) {
	m := cube()

	// 12 cube edges plus one diagonal per side
	edges := m.Edges()
	if len(edges) != 18 {
		t.Fatalf("Edges() = %d, want 18", len(edges))
	}

	seen := make(map[Edge]bool)
	for _, e := range edges {
		if e.A >= e.B {
			t.Errorf("edge %v not normalized", e)
		}
		if seen[e] {
			t.Errorf("edge %v listed twice", e)
		}
		seen[e] = true
	}
}

func TestFeatureEdges(t *testing.T) {
	m := cube()

	tests := []struct {
		name  string
		angle float64
		want  int
	}{
		{"all", 0, 18},
		{"drop coplanar diagonals", 30, 12},
		{"right angles kept up to 89", 89, 12},
		{"nothing is that sharp", 91, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(m.FeatureEdges(tc.angle)); got != tc.want {
				t.Errorf("FeatureEdges(%v) = %d edges, want %d", tc.angle, got, tc.want)
			}
		})
	}

	// A lone triangle has only boundary edges.
	tri := NewMesh("tri")
	tri.AddTriangle(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0))
	if got := len(tri.FeatureEdges(30)); got != 3 {
		t.Errorf("boundary edges = %d, want 3", got)
	}
}

func TestWeld(t *testing.T) {
	m := NewMesh("soup")
	m.AddTriangle(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(1, 1, 0))
	m.AddTriangle(math3d.V3(0, 0, 0), math3d.V3(1, 1, 1e-9), math3d.V3(0, 1, 0))
	// collapses once welded
	m.AddTriangle(math3d.V3(5, 5, 5), math3d.V3(5, 5, 5+1e-9), math3d.V3(6, 5, 5))

	m.Weld(1e-6)

	if m.VertexCount() != 6 {
		t.Errorf("VertexCount = %d, want 6", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
	if got := len(m.Edges()); got != 5 {
		t.Errorf("Edges = %d, want 5 (shared diagonal)", got)
	}
}

func TestFit(t *testing.T) {
	m := cube()
	m.Transform(math3d.Translate(math3d.V3(10, 20, 30)).Mul(math3d.Scale(math3d.V3(4, 2, 1))))

	m.Fit(2)

	if c := m.Center(); !c.ApproxEqual(math3d.Zero3(), 1e-12) {
		t.Errorf("Center = %v, want origin", c)
	}
	if s := m.Size(); !s.ApproxEqual(math3d.V3(2, 1, 0.5), 1e-12) {
		t.Errorf("Size = %v, want (2, 1, 0.5)", s)
	}
}

func TestClone(t *testing.T) {
	m := cube()
	c := m.Clone()
	c.Vertices[0] = math3d.V3(9, 9, 9)
	c.Faces[0].V[0] = 7

	if m.Vertices[0] == c.Vertices[0] || m.Faces[0] == c.Faces[0] {
		t.Error("Clone shares storage with the original")
	}
}

const asciiSTL = `solid square
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid square
`

func binarySTL(header string, tris ...[3]math3d.Vec3) []byte {
	var buf bytes.Buffer
	h := make([]byte, stlHeaderSize)
	copy(h, header)
	buf.Write(h)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		_ = binary.Write(&buf, binary.LittleEndian, [3]float32{}) // normal
		for _, v := range tri {
			_ = binary.Write(&buf, binary.LittleEndian, [3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func TestReadSTL(t *testing.T) {
	square := [][3]math3d.Vec3{
		{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(1, 1, 0)},
		{math3d.V3(0, 0, 0), math3d.V3(1, 1, 0), math3d.V3(0, 1, 0)},
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"ascii", []byte(asciiSTL)},
		{"binary", binarySTL("exported", square...)},
		{"binary with solid header", binarySTL("solid lies", square...)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ReadSTL(bytes.NewReader(tc.data))
			if err != nil {
				t.Fatalf("ReadSTL: %v", err)
			}
			if m.TriangleCount() != 2 {
				t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
			}
			// welded: four corners, five edges
			if m.VertexCount() != 4 {
				t.Errorf("VertexCount = %d, want 4", m.VertexCount())
			}
			if got := len(m.Edges()); got != 5 {
				t.Errorf("Edges = %d, want 5", got)
			}
			if n := m.FaceNormal(0); !n.ApproxEqual(math3d.V3(0, 0, 1), 1e-9) {
				t.Errorf("FaceNormal(0) = %v, want +z", n)
			}
		})
	}
}

func TestReadSTLErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty solid", "solid empty\nendsolid empty\n"},
		{"bad coordinate", "solid x\nfacet\nouter loop\nvertex 0 0 z\n"},
		{"short vertex", "solid x\nfacet\nouter loop\nvertex 0 0\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadSTL(strings.NewReader(tc.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	truncated := binarySTL("x", [3]math3d.Vec3{})
	truncated = truncated[:len(truncated)-10]
	if _, err := ReadSTL(bytes.NewReader(truncated)); err == nil {
		t.Error("expected an error for truncated binary STL")
	}
}

func TestReadOBJ(t *testing.T) {
	const src = `# a square and a triangle
o square
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
v 5 5 5
f -3/1 -2 -1
`
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadOBJ: %v", err)
	}

	if m.VertexCount() != 5 {
		t.Errorf("VertexCount = %d, want 5", m.VertexCount())
	}
	// quad fanned into two plus one triangle
	if m.TriangleCount() != 3 {
		t.Fatalf("TriangleCount = %d, want 3", m.TriangleCount())
	}
	if got := m.Faces[1].V; got != [3]int{0, 2, 3} {
		t.Errorf("fan face = %v, want [0 2 3]", got)
	}
	if got := m.Faces[2].V; got != [3]int{2, 3, 4} {
		t.Errorf("relative face = %v, want [2 3 4]", got)
	}
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no faces", "v 0 0 0\nv 1 0 0\n", ErrNoGeometry},
		{"index out of range", "v 0 0 0\nf 1 2 3\n", nil},
		{"bad index", "v 0 0 0\nf a b c\n", nil},
		{"bad vertex", "v 0 x 0\n", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	stl := filepath.Join(dir, "square.STL")
	if err := os.WriteFile(stl, []byte(asciiSTL), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(stl)
	if err != nil {
		t.Fatalf("Load(stl): %v", err)
	}
	if m.Name != "square.STL" || m.TriangleCount() != 2 {
		t.Errorf("Load(stl) = %q with %d triangles", m.Name, m.TriangleCount())
	}

	obj := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(obj, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if m, err := Load(obj); err != nil || m.TriangleCount() != 1 {
		t.Errorf("Load(obj) = %v, %v", m, err)
	}

	if _, err := Load(filepath.Join(dir, "model.fbx")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(fbx) err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.stl")); err == nil {
		t.Error("Load(missing) should fail")
	}
}

func TestFaceNormalDegenerate(t *testing.T) {
	m := NewMesh("line")
	m.AddTriangle(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(2, 0, 0))
	n := m.FaceNormal(0)
	if math.IsNaN(n.X) || n.Len() != 0 {
		t.Errorf("degenerate FaceNormal = %v, want zero", n)
	}
}
