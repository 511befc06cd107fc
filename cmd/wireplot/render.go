package main

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/wireplot/pkg/hidden"
	"github.com/taigrr/wireplot/pkg/render"
	"github.com/taigrr/wireplot/pkg/scene"
)

type renderOptions struct {
	view        *viewOptions
	output      string
	width       int
	height      int
	color       string
	background  string
	strokeWidth float64
	axes        bool
	antialias   bool
}

func newRenderCmd() *cobra.Command {
	o := &renderOptions{
		view:        newViewOptions(),
		width:       800,
		height:      800,
		color:       "0,0,0",
		background:  "255,255,255",
		strokeWidth: 1,
	}

	cmd := &cobra.Command{
		Use:   "render <model>",
		Short: "Plot a model to PNG or SVG",
		Long: "Render loads a GLB, GLTF, OBJ or STL model and writes its visible edges to a PNG or SVG file.\n" +
			"The output format follows the extension given to --output.",
		Example: "  wireplot render teapot.stl -o teapot.svg --eye 6,4,8\n" +
			"  wireplot render part.glb -o part.png --width 1600 --height 1200 --feature-angle 20",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}

	fs := cmd.Flags()
	o.view.register(fs)
	fs.StringVarP(&o.output, "output", "o", "", "output file (.png or .svg)")
	fs.IntVar(&o.width, "width", o.width, "image width in pixels")
	fs.IntVar(&o.height, "height", o.height, "image height in pixels")
	fs.StringVar(&o.color, "color", o.color, "line color (R,G,B)")
	fs.StringVar(&o.background, "bg", o.background, "background color (R,G,B)")
	fs.Float64Var(&o.strokeWidth, "stroke-width", o.strokeWidth, "line width for SVG and anti-aliased PNG output")
	fs.BoolVar(&o.axes, "axes", false, "overlay the world axes (PNG only)")
	fs.BoolVar(&o.antialias, "antialias", false, "draw smooth lines in PNG output")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (o *renderOptions) run(cmd *cobra.Command, path string) error {
	if err := o.view.validate(); err != nil {
		return err
	}
	if o.width <= 0 || o.height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", o.width, o.height)
	}
	ink, err := render.ParseColor(o.color)
	if err != nil {
		return err
	}
	paper, err := render.ParseColor(o.background)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(o.output))
	if ext != ".png" && ext != ".svg" {
		return fmt.Errorf("unsupported output format %q (use .png or .svg)", ext)
	}

	mesh, err := o.view.loadMesh(path)
	if err != nil {
		return err
	}

	cam := o.view.camera()
	vp := render.FitViewport(o.width, o.height)

	segs, st, err := scene.Render(cmd.Context(), cam, mesh, o.view.sceneOptions(vp))
	if err != nil {
		return err
	}

	switch ext {
	case ".svg":
		style := render.SVGStyle{
			Stroke:      ink,
			Background:  paper,
			StrokeWidth: o.strokeWidth,
			Title:       mesh.Name,
		}
		err = render.SaveSVG(o.output, vp, segs, style)
	default:
		fb := render.NewFramebuffer(o.width, o.height)
		fb.Clear(paper)
		w := render.NewWireframe(fb)
		if o.axes {
			w.DrawAxes(cam, o.view.fit/2)
		}
		if o.antialias {
			w.StrokeSegments(segs, ink, o.strokeWidth)
		} else {
			w.DrawSegments(segs, ink)
		}
		err = fb.SavePNG(o.output)
	}
	if err != nil {
		return err
	}

	slog.Info("wrote plot",
		slog.String("path", o.output),
		slog.Int("segments", len(segs)),
		slog.Any("stats", st),
	)
	return nil
}

// visibleLength sums the screen-space length of segs.
func visibleLength(segs []hidden.Segment) float64 {
	var total float64
	for _, s := range segs {
		total += math.Sqrt(s.P0.DistSqXY(s.P1))
	}
	return total
}
