package render

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/taigrr/wireplot/pkg/hidden"
)

// StrokeSegments draws segs as anti-aliased lines of the given pixel width.
// It is slower than DrawSegments and meant for final PNG output.
func (w *Wireframe) StrokeSegments(segs []hidden.Segment, color Color, width float64) {
	if width <= 0 {
		width = 1
	}
	half := width / 2

	r := vector.NewRasterizer(w.fb.Width, w.fb.Height)
	drawn := 0
	for _, s := range segs {
		x0, y0, x1, y1, ok := w.vp.ClipSegment(s)
		if !ok {
			continue
		}
		dx, dy := x1-x0, y1-y0
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// offset both ends along the normal; every quad winds the same
		// way so overlaps accumulate instead of cancelling
		nx, ny := -dy/l*half, dx/l*half
		r.MoveTo(float32(x0+nx), float32(y0+ny))
		r.LineTo(float32(x1+nx), float32(y1+ny))
		r.LineTo(float32(x1-nx), float32(y1-ny))
		r.LineTo(float32(x0-nx), float32(y0-ny))
		r.ClosePath()
		drawn++
	}
	if drawn == 0 {
		return
	}

	img := w.fb.Image()
	r.Draw(img, img.Bounds(), image.NewUniform(color), image.Point{})
}
