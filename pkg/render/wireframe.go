package render

import (
	"math"

	"github.com/taigrr/wireplot/pkg/hidden"
	"github.com/taigrr/wireplot/pkg/math3d"
)

// ScreenExtent is the screen-space distance from the view axis to the edge
// of the field of view.
const ScreenExtent = 1000

// Viewport maps screen space onto pixels. Screen space is centered on the
// view axis with y up; Scale is pixels per screen unit.
type Viewport struct {
	Width  int
	Height int
	Scale  float64
}

// FitViewport returns a viewport where the field of view spans the shorter
// side of a width x height image.
func FitViewport(width, height int) Viewport {
	return Viewport{
		Width:  width,
		Height: height,
		Scale:  float64(min(width, height)) / (2 * ScreenExtent),
	}
}

// ToPixel converts a screen-space point to pixel coordinates.
func (v Viewport) ToPixel(p math3d.Vec3) (x, y float64) {
	return float64(v.Width)/2 + p.X*v.Scale, float64(v.Height)/2 - p.Y*v.Scale
}

// Bounds returns the screen-space rectangle covered by the viewport.
func (v Viewport) Bounds() (minX, minY, maxX, maxY float64) {
	hw := float64(v.Width) / 2 / v.Scale
	hh := float64(v.Height) / 2 / v.Scale
	return -hw, -hh, hw, hh
}

// ClipSegment clips s to the pixel rectangle and returns its endpoints in
// pixel coordinates. It reports false when nothing of s is on screen.
func (v Viewport) ClipSegment(s hidden.Segment) (x0, y0, x1, y1 float64, ok bool) {
	x0, y0 = v.ToPixel(s.P0)
	x1, y1 = v.ToPixel(s.P1)

	// Liang-Barsky against [0, Width] x [0, Height]
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, float64(v.Width) - x0},
		{-dy, y0},
		{dy, float64(v.Height) - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}

	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// Wireframe plots screen-space segments into a framebuffer.
type Wireframe struct {
	fb *Framebuffer
	vp Viewport
}

// NewWireframe creates a plotter that fits the field of view to fb.
func NewWireframe(fb *Framebuffer) *Wireframe {
	return &Wireframe{
		fb: fb,
		vp: FitViewport(fb.Width, fb.Height),
	}
}

// Viewport returns the mapping used for plotting.
func (w *Wireframe) Viewport() Viewport {
	return w.vp
}

// DrawSegment draws one screen-space segment.
func (w *Wireframe) DrawSegment(s hidden.Segment, color Color) {
	x0, y0, x1, y1, ok := w.vp.ClipSegment(s)
	if !ok {
		return
	}
	w.fb.DrawLine(pixel(x0), pixel(y0), pixel(x1), pixel(y1), color)
}

// DrawSegments draws every segment in segs.
func (w *Wireframe) DrawSegments(segs []hidden.Segment, color Color) {
	for _, s := range segs {
		w.DrawSegment(s, color)
	}
}

// DrawLine3D projects a world-space line with cam and draws it without
// hidden-line removal. Lines with an endpoint behind the camera are skipped.
func (w *Wireframe) DrawLine3D(cam *Camera, p1, p2 math3d.Vec3, color Color) {
	s1, ok1 := cam.Project(p1)
	s2, ok2 := cam.Project(p2)
	if !ok1 || !ok2 {
		return
	}
	w.DrawSegment(hidden.Seg(s1, s2), color)
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(cam *Camera, length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(cam, origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(cam, origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(cam, origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// PlotSegments draws segs into fb fitted to the field of view.
func PlotSegments(fb *Framebuffer, segs []hidden.Segment, color Color) {
	NewWireframe(fb).DrawSegments(segs, color)
}

// pixel returns the index of the pixel containing coordinate v.
func pixel(v float64) int {
	return int(math.Floor(v))
}
