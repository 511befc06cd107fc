package render

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/taigrr/wireplot/pkg/hidden"
)

// SVGStyle controls vector output.
type SVGStyle struct {
	Stroke      Color
	Background  Color // Zero alpha leaves the background transparent
	StrokeWidth float64
	Title       string
}

// DefaultSVGStyle draws black hairlines on white.
func DefaultSVGStyle() SVGStyle {
	return SVGStyle{
		Stroke:      ColorBlack,
		Background:  ColorWhite,
		StrokeWidth: 1,
	}
}

// WriteSVG writes segs as an SVG document of vp's size. Segments are
// clipped to the viewport.
func WriteSVG(w io.Writer, vp Viewport, segs []hidden.Segment, style SVGStyle) error {
	cw := &errWriter{w: w}
	canvas := svg.New(cw)
	canvas.Start(vp.Width, vp.Height)
	if style.Title != "" {
		canvas.Title(style.Title)
	}
	if style.Background.A != 0 {
		canvas.Rect(0, 0, vp.Width, vp.Height, "fill:"+Hex(style.Background))
	}

	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:%g;stroke-linecap:round;fill:none",
		Hex(style.Stroke), style.StrokeWidth))
	for _, s := range segs {
		x0, y0, x1, y1, ok := vp.ClipSegment(s)
		if !ok {
			continue
		}
		canvas.Line(round(x0), round(y0), round(x1), round(y1))
	}
	canvas.Gend()
	canvas.End()

	return cw.err
}

// SaveSVG writes segs to an SVG file.
func SaveSVG(path string, vp Viewport, segs []hidden.Segment, style SVGStyle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSVG(f, vp, segs, style); err != nil {
		f.Close()
		return fmt.Errorf("write svg: %w", err)
	}
	return f.Close()
}

func round(v float64) int {
	return int(math.Round(v))
}

// errWriter keeps the first write error; the SVG canvas discards them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
