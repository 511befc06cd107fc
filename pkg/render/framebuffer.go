// Package render projects wireframes to screen space and plots them to
// pixel buffers, the terminal and SVG.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
)

// Framebuffer is an RGBA pixel buffer that can be saved as PNG or drawn to
// the terminal. Terminal output doubles vertical resolution with half-block
// characters (▀▄).
type Framebuffer struct {
	Width  int // Width in "pixels" (same as terminal columns)
	Height int // Height in "pixels" (2x terminal rows due to half-blocks)
	img    *image.RGBA
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
// Height should be 2x the desired terminal rows for half-block rendering.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	draw.Draw(fb.img, fb.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// SetPixel sets a pixel at (x, y). Points outside the buffer are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	fb.img.SetRGBA(x, y, c)
}

// GetPixel returns the color at (x, y), or transparent black outside the
// buffer.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	return fb.img.RGBAAt(x, y)
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Image returns the pixels as an image. It shares storage with fb.
func (fb *Framebuffer) Image() *image.RGBA {
	return fb.img
}

// WritePNG encodes the framebuffer as PNG.
func (fb *Framebuffer) WritePNG(w io.Writer) error {
	return png.Encode(w, fb.img)
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fb.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
