// Package hidden removes hidden lines from projected wireframes.
//
// Every type in this package lives in the screen space of a single camera
// generation: x/y are plotting coordinates and z is a depth proxy where
// larger values are farther from the eye.
package hidden

import (
	"github.com/taigrr/wireplot/pkg/math3d"
)

// Epsilon is the tolerance used by the point-in-triangle test and the
// endpoint coincidence checks.
const Epsilon = 1e-7

// minArea is twice the smallest screen-space area a triangle may have and
// still occlude anything.
const minArea = 1e-9

// Triangle is a projected, immutable occluder.
type Triangle struct {
	Screen [3]math3d.Vec3 // Projected vertices
	Min    math3d.Vec3    // Bounding box including depth
	Max    math3d.Vec3
	T1     math3d.Vec3 // Screen[1] - Screen[0]
	T2     math3d.Vec3 // Screen[2] - Screen[0]

	// Invisible triangles are back-facing or degenerate and never occlude.
	Invisible bool

	rank int // position in depth order, assigned by NewBucketMap
}

// TriangleOption configures NewTriangle.
type TriangleOption func(*triangleConfig)

type triangleConfig struct {
	doubleSided bool
}

// DoubleSided keeps back-facing triangles as occluders. Use it for open
// meshes where the inside of a surface can be seen.
func DoubleSided(enabled bool) TriangleOption {
	return func(c *triangleConfig) {
		c.doubleSided = enabled
	}
}

// NewTriangle builds a triangle from three projected vertices.
// Counter-clockwise triangles (in y-up screen space) face the camera.
func NewTriangle(v0, v1, v2 math3d.Vec3, opts ...TriangleOption) *Triangle {
	var cfg triangleConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Triangle{
		Screen: [3]math3d.Vec3{v0, v1, v2},
		Min:    v0.Min(v1).Min(v2),
		Max:    v0.Max(v1).Max(v2),
		T1:     v1.Sub(v0),
		T2:     v2.Sub(v0),
	}

	area := t.signedArea()
	switch {
	case area > -minArea && area < minArea:
		t.Invisible = true
	case area < 0 && !cfg.doubleSided:
		t.Invisible = true
	}

	return t
}

// signedArea returns twice the signed screen-space area.
func (t *Triangle) signedArea() float64 {
	return t.T1.X*t.T2.Y - t.T2.X*t.T1.Y
}

// BaryCoord returns the barycentric coordinates (a, b) of p relative to
// Screen[0], T1 and T2, with the triangle's depth at p's x/y in Z.
func (t *Triangle) BaryCoord(p math3d.Vec3) math3d.Vec3 {
	px := p.X - t.Screen[0].X
	py := p.Y - t.Screen[0].Y

	d := t.signedArea()
	a := (px*t.T2.Y - py*t.T2.X) / d
	b := (py*t.T1.X - px*t.T1.Y) / d

	return math3d.V3(a, b, t.Screen[0].Z+a*t.T1.Z+b*t.T2.Z)
}

// Inside reports whether barycentric coordinates fall within the triangle,
// widened by Epsilon on every side.
func Inside(bc math3d.Vec3) bool {
	return bc.X >= -Epsilon && bc.Y >= -Epsilon && bc.X+bc.Y <= 1+Epsilon
}
