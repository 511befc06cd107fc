package main

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// OrbitAxis tracks position and velocity for one orbit angle with spring decay
type OrbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewOrbitAxis creates an axis with harmonica spring for smooth velocity decay
func NewOrbitAxis(fps int, position float64) OrbitAxis {
	return OrbitAxis{
		Position: position,
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0 using
// the spring. It reports whether the position moved noticeably.
func (a *OrbitAxis) Update() bool {
	before := a.Position
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
	return math.Abs(a.Position-before) > 1e-5
}

// OrbitState is the viewer's camera orbit: yaw and pitch about the target
// plus distance from it.
type OrbitState struct {
	Yaw, Pitch OrbitAxis
	Distance   float64
	fps        int

	initYaw, initPitch, initDistance float64
}

// NewOrbitState starts an orbit at the given angles (radians) and distance.
func NewOrbitState(fps int, yaw, pitch, distance float64) *OrbitState {
	return &OrbitState{
		Yaw:          NewOrbitAxis(fps, yaw),
		Pitch:        NewOrbitAxis(fps, pitch),
		Distance:     distance,
		fps:          fps,
		initYaw:      yaw,
		initPitch:    pitch,
		initDistance: distance,
	}
}

// Update advances both axes one frame and reports whether the camera moved.
func (o *OrbitState) Update() bool {
	moved := o.Yaw.Update()
	if o.Pitch.Update() {
		moved = true
	}
	// keep pitch where Camera.Orbit does not clamp it, so velocity does not
	// pile up against the pole
	const maxPitch = math.Pi/2 - 0.01
	if o.Pitch.Position > maxPitch {
		o.Pitch.Position, o.Pitch.Velocity = maxPitch, 0
	}
	if o.Pitch.Position < -maxPitch {
		o.Pitch.Position, o.Pitch.Velocity = -maxPitch, 0
	}
	return moved
}

// ApplyImpulse adds angular velocity.
func (o *OrbitState) ApplyImpulse(yaw, pitch float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
}

// Zoom scales the distance, clamped to stay between the near and far planes.
func (o *OrbitState) Zoom(factor float64) {
	o.Distance = math.Max(2, math.Min(150, o.Distance*factor))
}

// Reset returns to the starting view.
func (o *OrbitState) Reset() {
	o.Yaw = NewOrbitAxis(o.fps, o.initYaw)
	o.Pitch = NewOrbitAxis(o.fps, o.initPitch)
	o.Distance = o.initDistance
}
