package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/taigrr/wireplot/pkg/render"
	"github.com/taigrr/wireplot/pkg/scene"
)

func newStatsCmd() *cobra.Command {
	o := newViewOptions()
	var width, height int

	cmd := &cobra.Command{
		Use:   "stats <model>",
		Short: "Run one visibility pass and print its statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			mesh, err := o.loadMesh(args[0])
			if err != nil {
				return err
			}

			cam := o.camera()
			vp := render.Viewport{}
			if width > 0 && height > 0 {
				vp = render.FitViewport(width, height)
			}

			start := time.Now()
			f, err := scene.NewFrame(cam, mesh, o.sceneOptions(vp))
			if err != nil {
				return err
			}
			built := time.Since(start)

			start = time.Now()
			segs, st, err := f.Visible(cmd.Context())
			if err != nil {
				return err
			}
			pass := time.Since(start)

			out := cmd.OutOrStdout()
			row := func(name string, v any) {
				fmt.Fprintf(out, "%-16s %v\n", name, v)
			}
			row("model", mesh.Name)
			row("vertices", mesh.VertexCount())
			row("triangles", mesh.TriangleCount())
			row("projected", len(f.Triangles))
			row("culled", f.Culled)
			row("buckets", f.Buckets.Cells())
			row("edges", st.Edges)
			row("tested", st.Tested)
			row("visible", st.Visible)
			row("hidden", st.Hidden)
			row("clipped", st.Clipped)
			row("split", st.Split)
			row("visible length", fmt.Sprintf("%.1f", visibleLength(segs)))
			writeDurations(out, built, pass)
			return nil
		},
	}

	fs := cmd.Flags()
	o.register(fs)
	fs.IntVar(&width, "width", 0, "restrict bucketing to a viewport of this width")
	fs.IntVar(&height, "height", 0, "restrict bucketing to a viewport of this height")

	return cmd
}

func writeDurations(w io.Writer, build, pass time.Duration) {
	fmt.Fprintf(w, "%-16s %s\n", "frame build", build.Round(time.Microsecond))
	fmt.Fprintf(w, "%-16s %s\n", "visibility pass", pass.Round(time.Microsecond))
}
