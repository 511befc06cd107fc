// Package scene turns a mesh seen through a camera into the visible part of
// its wireframe.
//
// A Frame captures one camera generation: it projects the mesh once, builds
// the occluder map and can then run the visibility pass. When the camera
// moves, build a new Frame.
package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taigrr/wireplot/pkg/hidden"
	"github.com/taigrr/wireplot/pkg/math3d"
	"github.com/taigrr/wireplot/pkg/models"
	"github.com/taigrr/wireplot/pkg/render"
)

var (
	// ErrStaleGeneration is returned when the camera moved after the frame
	// was built.
	ErrStaleGeneration = errors.New("camera generation changed since frame was built")

	// ErrCameraDirty is returned when the camera has changes that
	// UpdateMatrix has not applied yet.
	ErrCameraDirty = errors.New("camera matrix is out of date")
)

// Options configures frame construction.
type Options struct {
	// DoubleSided lets back-facing triangles occlude.
	DoubleSided bool

	// Workers for the visibility pass. 1 runs serially; <= 0 uses
	// GOMAXPROCS.
	Workers int

	// FeatureAngle drops edges between faces that meet flatter than this
	// many degrees. 0 draws every edge.
	FeatureAngle float64

	// Viewport limits occluder bucketing to what can be seen. The zero
	// value buckets the square field of view, ±render.ScreenExtent.
	Viewport render.Viewport
}

// Frame is a mesh projected with one camera generation.
type Frame struct {
	cam        *render.Camera
	generation uint64
	opts       Options

	Triangles []*hidden.Triangle
	Edges     []hidden.Segment
	Buckets   *hidden.BucketMap

	// Culled counts triangles dropped because a vertex could not be
	// projected.
	Culled int
}

// NewFrame projects mesh with cam.
func NewFrame(cam *render.Camera, mesh *models.Mesh, opts Options) (*Frame, error) {
	if cam.Dirty() {
		return nil, ErrCameraDirty
	}
	if mesh == nil || len(mesh.Faces) == 0 {
		return nil, models.ErrNoGeometry
	}

	start := time.Now()
	f := &Frame{
		cam:        cam,
		generation: cam.Generation,
		opts:       opts,
	}

	screen := make([]math3d.Vec3, len(mesh.Vertices))
	ok := make([]bool, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		screen[i], ok[i] = cam.Project(v)
	}

	triOpts := []hidden.TriangleOption{hidden.DoubleSided(opts.DoubleSided)}
	f.Triangles = make([]*hidden.Triangle, 0, len(mesh.Faces))
	for _, face := range mesh.Faces {
		a, b, c := face.V[0], face.V[1], face.V[2]
		if !ok[a] || !ok[b] || !ok[c] {
			f.Culled++
			continue
		}
		f.Triangles = append(f.Triangles, hidden.NewTriangle(screen[a], screen[b], screen[c], triOpts...))
	}

	edges := mesh.FeatureEdges(opts.FeatureAngle)
	f.Edges = make([]hidden.Segment, 0, len(edges))
	for _, e := range edges {
		s, visible := projectEdge(cam, mesh.Vertices[e.A], mesh.Vertices[e.B])
		if visible {
			f.Edges = append(f.Edges, s)
		}
	}

	window := hidden.Window(-render.ScreenExtent, -render.ScreenExtent, render.ScreenExtent, render.ScreenExtent)
	if vp := opts.Viewport; vp.Scale > 0 {
		window = hidden.Window(vp.Bounds())
	}
	f.Buckets = hidden.NewBucketMap(f.Triangles, window)

	Logger().Debug("frame built",
		slog.Uint64("generation", f.generation),
		slog.Int("triangles", len(f.Triangles)),
		slog.Int("occluders", f.Buckets.Len()),
		slog.Int("cells", f.Buckets.Cells()),
		slog.Int("edges", len(f.Edges)),
		slog.Int("culled", f.Culled),
		slog.Duration("elapsed", time.Since(start)),
	)

	return f, nil
}

// projectEdge clips a world-space edge to the near plane and projects it.
func projectEdge(cam *render.Camera, a, b math3d.Vec3) (hidden.Segment, bool) {
	const near = render.NearPlane

	da, db := cam.Depth(a), cam.Depth(b)
	switch {
	case da < near && db < near:
		return hidden.Segment{}, false
	case da < near:
		a = a.Lerp(b, (near-da)/(db-da))
	case db < near:
		b = b.Lerp(a, (near-db)/(da-db))
	}

	pa, okA := cam.Project(a)
	pb, okB := cam.Project(b)
	if !okA || !okB {
		return hidden.Segment{}, false
	}
	return hidden.Seg(pa, pb), true
}

// Generation returns the camera generation the frame was built with.
func (f *Frame) Generation() uint64 {
	return f.generation
}

// Stale reports whether the camera changed after the frame was built.
func (f *Frame) Stale() bool {
	return f.cam.Dirty() || f.cam.Generation != f.generation
}

// Visible runs the visibility pass and returns the visible pieces of every
// edge.
func (f *Frame) Visible(ctx context.Context) ([]hidden.Segment, hidden.PassStats, error) {
	if f.Stale() {
		return nil, hidden.PassStats{}, fmt.Errorf("frame %d: %w", f.generation, ErrStaleGeneration)
	}

	start := time.Now()

	var (
		segs []hidden.Segment
		st   hidden.PassStats
		err  error
	)
	if f.opts.Workers == 1 {
		if err = ctx.Err(); err == nil {
			segs, st = hidden.Run(f.Edges, f.Buckets)
		}
	} else {
		segs, st, err = hidden.VisibleParallel(ctx, f.Edges, f.Buckets, f.opts.Workers)
	}
	if err != nil {
		return nil, st, fmt.Errorf("visibility pass: %w", err)
	}

	Logger().Debug("frame visible",
		slog.Uint64("generation", f.generation),
		slog.Any("stats", st),
		slog.Duration("elapsed", time.Since(start)),
	)
	return segs, st, nil
}

// Render builds a frame and runs its visibility pass.
func Render(ctx context.Context, cam *render.Camera, mesh *models.Mesh, opts Options) ([]hidden.Segment, hidden.PassStats, error) {
	f, err := NewFrame(cam, mesh, opts)
	if err != nil {
		return nil, hidden.PassStats{}, err
	}
	return f.Visible(ctx)
}
