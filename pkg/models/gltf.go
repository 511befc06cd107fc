package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/wireplot/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// ApplyNodes bakes node transforms into the vertices. When false every
	// mesh is loaded once in its own local space.
	ApplyNodes bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		ApplyNodes: true,
	}
}

// LoadGLB loads a binary GLTF (.glb) or JSON GLTF (.gltf) file.
func LoadGLB(path string) (*Mesh, error) {
	loader := NewGLTFLoader()
	return loader.Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := l.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// FromDocument converts a decoded GLTF document into a single mesh.
func (l *GLTFLoader) FromDocument(doc *gltf.Document) (*Mesh, error) {
	mesh := NewMesh("gltf")

	roots := l.roots(doc)
	if !l.ApplyNodes || len(roots) == 0 {
		for _, m := range doc.Meshes {
			if err := l.processMesh(doc, m, math3d.Identity(), mesh); err != nil {
				return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
			}
		}
	} else {
		for _, idx := range roots {
			if err := l.processNode(doc, idx, math3d.Identity(), mesh, 0); err != nil {
				return nil, err
			}
		}
	}

	// Exporters split vertices at normal and UV seams; merge them back so
	// seams do not read as boundary edges.
	mesh.Weld(WeldEpsilon)
	if len(mesh.Faces) == 0 {
		return nil, ErrNoGeometry
	}

	mesh.CalculateBounds()

	return mesh, nil
}

// roots returns the root nodes of the default scene, or every parentless
// node when the document names no scene.
func (l *GLTFLoader) roots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}

	var out []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			out = append(out, i)
		}
	}
	return out
}

// maxNodeDepth bounds recursion on malformed (cyclic) node graphs.
const maxNodeDepth = 64

func (l *GLTFLoader) processNode(doc *gltf.Document, idx int, parent math3d.Mat4, mesh *Mesh, depth int) error {
	if idx < 0 || idx >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}

	n := doc.Nodes[idx]
	world := parent.Mul(nodeTransform(n))

	if n.Mesh != nil && *n.Mesh < len(doc.Meshes) {
		m := doc.Meshes[*n.Mesh]
		if err := l.processMesh(doc, m, world, mesh); err != nil {
			return fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	for _, c := range n.Children {
		if err := l.processNode(doc, c, world, mesh, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform returns the local transform of a node: its matrix when
// one is given, otherwise T * R * S.
func nodeTransform(n *gltf.Node) math3d.Mat4 {
	if m := math3d.Mat4(n.MatrixOrDefault()); m != math3d.Identity() {
		return m
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()

	return math3d.Translate(math3d.V3(t[0], t[1], t[2])).
		Mul(math3d.FromQuat(r[0], r[1], r[2], r[3])).
		Mul(math3d.Scale(math3d.V3(s[0], s[1], s[2])))
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, world math3d.Mat4, mesh *Mesh) error {
	mirrored := world.Det3() < 0
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Skip non-triangle primitives (lines, points, strips)
			continue
		}

		// Get position accessor
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		if posIdx < 0 || posIdx >= len(doc.Accessors) {
			return fmt.Errorf("position accessor %d out of range", posIdx)
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		// Base vertex index for this primitive
		baseVertex := len(mesh.Vertices)

		for _, p := range positions {
			v := math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))
			mesh.Vertices = append(mesh.Vertices, world.MulVec3(v))
		}

		// GLTF front faces are counter-clockwise, the same convention the
		// visibility pass uses. A mirroring transform reverses that, so the
		// last two corners are swapped to keep faces pointing outward.
		face := func(a, b, c int) Face {
			if mirrored {
				b, c = c, b
			}
			return Face{V: [3]int{baseVertex + a, baseVertex + b, baseVertex + c}}
		}

		if prim.Indices != nil {
			if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
				return fmt.Errorf("index accessor %d out of range", *prim.Indices)
			}
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}

			for i := 0; i+2 < len(indices); i += 3 {
				a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
				if a >= len(positions) || b >= len(positions) || c >= len(positions) {
					return fmt.Errorf("index out of range in triangle %d", i/3)
				}
				mesh.Faces = append(mesh.Faces, face(a, b, c))
			}
		} else {
			// No indices, assume sequential triangles
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Faces = append(mesh.Faces, face(i, i+1, i+2))
			}
		}
	}

	return nil
}
