package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/pflag"
	"github.com/taigrr/wireplot/pkg/math3d"
	"github.com/taigrr/wireplot/pkg/models"
	"github.com/taigrr/wireplot/pkg/render"
	"github.com/taigrr/wireplot/pkg/scene"
)

// vecFlag is a pflag.Value holding an "x,y,z" vector.
type vecFlag struct {
	v math3d.Vec3
}

var _ pflag.Value = (*vecFlag)(nil)

func (f *vecFlag) String() string {
	return fmt.Sprintf("%g,%g,%g", f.v.X, f.v.Y, f.v.Z)
}

func (f *vecFlag) Set(s string) error {
	v, err := math3d.ParseVec3(s)
	if err != nil {
		return err
	}
	f.v = v
	return nil
}

func (f *vecFlag) Type() string {
	return "x,y,z"
}

// viewOptions are the camera and pass flags shared by every command.
type viewOptions struct {
	eye, lookAt, up vecFlag
	fov             float64
	fit             float64
	workers         int
	doubleSided     bool
	featureAngle    float64
}

func newViewOptions() *viewOptions {
	return &viewOptions{
		eye:    vecFlag{math3d.V3(4, 3, 6)},
		lookAt: vecFlag{math3d.Zero3()},
		up:     vecFlag{math3d.Up()},
		fov:    60,
		fit:    4,
	}
}

func (o *viewOptions) register(fs *pflag.FlagSet) {
	fs.Var(&o.eye, "eye", "camera position")
	fs.Var(&o.lookAt, "lookat", "point the camera looks at")
	fs.Var(&o.up, "up", "camera up direction")
	fs.Float64Var(&o.fov, "fov", o.fov, "field of view in degrees")
	fs.Float64Var(&o.fit, "fit", o.fit, "scale the model so its largest side is this long, centered on the origin (0 keeps it as is)")
	fs.IntVar(&o.workers, "workers", 0, "visibility pass workers (0 = one per CPU, 1 = serial)")
	fs.BoolVar(&o.doubleSided, "double-sided", false, "let back faces hide lines (open meshes)")
	fs.Float64Var(&o.featureAngle, "feature-angle", 0, "only draw edges where faces meet at more than this angle in degrees")
}

func (o *viewOptions) validate() error {
	if o.fov <= 0 || o.fov >= 180 {
		return fmt.Errorf("--fov must be between 0 and 180, got %g", o.fov)
	}
	if o.eye.v.Sub(o.lookAt.v).Len() == 0 {
		return fmt.Errorf("--eye and --lookat must differ")
	}
	if o.eye.v.Sub(o.lookAt.v).Cross(o.up.v).Len() == 0 {
		return fmt.Errorf("--up must not be parallel to the view direction")
	}
	return nil
}

// camera builds the camera described by the flags.
func (o *viewOptions) camera() *render.Camera {
	cam := render.NewCamera()
	cam.SetEye(o.eye.v)
	cam.SetLookAt(o.lookAt.v)
	cam.SetUp(o.up.v)
	cam.SetFOV(o.fov)
	cam.UpdateMatrix()
	return cam
}

func (o *viewOptions) sceneOptions(vp render.Viewport) scene.Options {
	return scene.Options{
		DoubleSided:  o.doubleSided,
		Workers:      o.workers,
		FeatureAngle: o.featureAngle,
		Viewport:     vp,
	}
}

// orbit returns yaw, pitch and distance of the eye around the target.
func (o *viewOptions) orbit() (yaw, pitch, distance float64) {
	d := o.eye.v.Sub(o.lookAt.v)
	distance = d.Len()
	yaw = math.Atan2(d.X, d.Z)
	pitch = math.Asin(d.Y / distance)
	return yaw, pitch, distance
}

// loadMesh reads and optionally normalizes a model.
func (o *viewOptions) loadMesh(path string) (*models.Mesh, error) {
	mesh, err := models.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if o.fit > 0 {
		mesh.Fit(o.fit)
	}

	slog.Info("loaded model",
		slog.String("name", mesh.Name),
		slog.Int("vertices", mesh.VertexCount()),
		slog.Int("triangles", mesh.TriangleCount()),
	)
	return mesh, nil
}
