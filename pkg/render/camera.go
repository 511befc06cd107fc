package render

import (
	"math"

	"github.com/taigrr/wireplot/pkg/math3d"
)

// Clip planes used by the plotting projection.
const (
	NearPlane = 1.0
	FarPlane  = 200.0
)

// Camera is an eye/look-at camera that projects world points into plotting
// screen space.
//
// Projected geometry is only comparable within one Generation. Every call to
// UpdateMatrix bumps Generation; triangles and segments projected earlier must
// be rebuilt before they are mixed with newer ones.
type Camera struct {
	Eye    math3d.Vec3
	LookAt math3d.Vec3
	Up     math3d.Vec3
	FOV    float64 // Field of view in degrees

	Generation uint64

	// Orthonormal basis from the last UpdateMatrix.
	U, V, W math3d.Vec3

	matrix math3d.Mat4
	dirty  bool
}

// NewCamera creates a camera ten units out on +Z looking at the origin.
// The matrix is built before returning.
func NewCamera() *Camera {
	c := &Camera{
		Eye:    math3d.V3(0, 0, 10),
		LookAt: math3d.Zero3(),
		Up:     math3d.Up(),
		FOV:    60,
	}
	c.UpdateMatrix()
	return c
}

// SetEye sets the eye position. Call UpdateMatrix before projecting.
func (c *Camera) SetEye(eye math3d.Vec3) {
	c.Eye = eye
	c.dirty = true
}

// SetLookAt sets the target point. Call UpdateMatrix before projecting.
func (c *Camera) SetLookAt(target math3d.Vec3) {
	c.LookAt = target
	c.dirty = true
}

// SetUp sets the up hint. Call UpdateMatrix before projecting.
func (c *Camera) SetUp(up math3d.Vec3) {
	c.Up = up
	c.dirty = true
}

// SetFOV sets the field of view (in degrees). Call UpdateMatrix before projecting.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.dirty = true
}

// Dirty reports whether parameters changed since the last UpdateMatrix.
func (c *Camera) Dirty() bool {
	return c.dirty
}

// UpdateMatrix rebuilds the basis and the combined view-projection matrix
// and increments Generation.
func (c *Camera) UpdateMatrix() {
	// w runs from the target back to the eye
	w := c.Eye.Sub(c.LookAt).Normalize()
	// u points to the right of the view
	u := c.Up.Cross(w).Normalize()
	// v is the recomputed up
	v := w.Cross(u).Normalize()

	view := math3d.View(u, v, w, c.Eye)
	proj := math3d.PlotPerspective(c.FOV, NearPlane, FarPlane)

	c.matrix = proj.Mul(view)
	c.U, c.V, c.W = u, v, w
	c.Generation++
	c.dirty = false
}

// Matrix returns the combined view-projection matrix.
func (c *Camera) Matrix() math3d.Mat4 {
	return c.matrix
}

// Project transforms a world point into screen space.
// It returns false when the point lies on or behind the eye plane (the
// pre-divide z is not positive); such geometry must be clipped first.
func (c *Camera) Project(p math3d.Vec3) (math3d.Vec3, bool) {
	clip := c.matrix.MulVec4(math3d.V4FromV3(p, 1))
	if clip.Z <= 0 {
		return math3d.Vec3{}, false
	}
	return clip.PerspectiveDivide(), true
}

// Forward returns the viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.W.Negate()
}

// Depth returns the distance of p in front of the eye along the view
// direction. Negative values are behind the camera.
func (c *Camera) Depth(p math3d.Vec3) float64 {
	return p.Sub(c.Eye).Dot(c.Forward())
}

// Orbit places the eye on a sphere around LookAt.
// yaw rotates about the world Y axis, pitch lifts the eye (radians).
func (c *Camera) Orbit(yaw, pitch, distance float64) {
	// Clamp pitch to keep the up hint from lining up with w
	const maxPitch = math.Pi/2 - 0.01
	pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))

	offset := math3d.V3(
		math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	).Scale(distance)

	c.Eye = c.LookAt.Add(offset)
	c.dirty = true
}
