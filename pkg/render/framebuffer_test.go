package render

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/wireplot/pkg/hidden"
	"github.com/taigrr/wireplot/pkg/math3d"
)

// pixels returns every pixel of fb in row-major order.
func pixels(fb *Framebuffer) []color.RGBA {
	out := make([]color.RGBA, 0, fb.Width*fb.Height)
	for y := range fb.Height {
		for x := range fb.Width {
			out = append(out, fb.GetPixel(x, y))
		}
	}
	return out
}

func TestFramebufferPixels(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	fb.Clear(ColorPaper)

	fb.SetPixel(1, 2, ColorRed)
	fb.SetPixel(-1, 0, ColorRed) // ignored
	fb.SetPixel(4, 0, ColorRed)  // ignored

	if got := fb.GetPixel(1, 2); got != ColorRed {
		t.Errorf("GetPixel(1, 2) = %v, want red", got)
	}
	if got := fb.GetPixel(0, 0); got != ColorPaper {
		t.Errorf("GetPixel(0, 0) = %v, want paper", got)
	}
	if got := fb.GetPixel(9, 9); got != (color.RGBA{}) {
		t.Errorf("GetPixel out of bounds = %v, want transparent", got)
	}
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           [][2]int
	}{
		{"horizontal", 0, 1, 3, 1, [][2]int{{0, 1}, {1, 1}, {2, 1}, {3, 1}}},
		{"vertical up", 2, 3, 2, 0, [][2]int{{2, 3}, {2, 2}, {2, 1}, {2, 0}}},
		{"diagonal", 0, 0, 3, 3, [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"point", 1, 1, 1, 1, [][2]int{{1, 1}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(5, 5)
			fb.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1, ColorWhite)

			lit := 0
			for _, p := range pixels(fb) {
				if p == ColorWhite {
					lit++
				}
			}
			if lit != len(tc.want) {
				t.Errorf("lit %d pixels, want %d", lit, len(tc.want))
			}
			for _, p := range tc.want {
				if fb.GetPixel(p[0], p[1]) != ColorWhite {
					t.Errorf("pixel %v not drawn", p)
				}
			}
		})
	}
}

func TestWritePNG(t *testing.T) {
	fb := NewFramebuffer(8, 6)
	fb.Clear(ColorBlack)
	fb.SetPixel(7, 5, ColorGreen)

	var buf bytes.Buffer
	if err := fb.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("bounds = %v, want 8x6", b)
	}
	if r, g, b, _ := img.At(7, 5).RGBA(); r != 0 || g != 0xffff || b != 0 {
		t.Errorf("pixel (7,5) = %v, want green", img.At(7, 5))
	}
}

func TestSavePNGBadPath(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	err := fb.SavePNG(filepath.Join(t.TempDir(), "missing", "out.png"))
	if err == nil || !strings.Contains(err.Error(), "create") {
		t.Errorf("SavePNG err = %v, want create error", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"0,255,128", RGB(0, 255, 128), false},
		{" 30, 30 ,40 ", RGB(30, 30, 40), false},
		{"256,0,0", color.RGBA{}, true},
		{"1,2", color.RGBA{}, true},
		{"a,b,c", color.RGBA{}, true},
	}

	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseColor(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if got := Hex(RGB(0, 255, 128)); got != "#00ff80" {
		t.Errorf("Hex = %q, want #00ff80", got)
	}
}

func TestPlotSegments(t *testing.T) {
	fb := NewFramebuffer(20, 20)
	PlotSegments(fb, []hidden.Segment{
		hidden.Seg(math3d.V3(-1000, 0, 1), math3d.V3(1000, 0, 1)),
	}, ColorInk)

	for x := range 20 {
		if fb.GetPixel(x, 10) != ColorInk {
			t.Errorf("pixel (%d, 10) not drawn", x)
		}
	}
	if fb.GetPixel(10, 9) == ColorInk || fb.GetPixel(10, 11) == ColorInk {
		t.Error("line drawn off its row")
	}
}

func TestTerminalRendererSize(t *testing.T) {
	r := NewTerminalRenderer(nil, 80, 24)
	if w, h := r.FramebufferSize(); w != 80 || h != 48 {
		t.Errorf("FramebufferSize = %dx%d, want 80x48", w, h)
	}
	if err := r.Flush(); err != nil {
		t.Errorf("Flush on unbuffered screen = %v", err)
	}
}
