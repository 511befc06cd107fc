package hidden

import (
	"github.com/taigrr/wireplot/pkg/math3d"
)

// Occlusion is the outcome of testing a segment against one triangle.
type Occlusion int

const (
	NoOcclusion Occlusion = iota // The triangle does not cover the segment
	InFront                      // The segment is nearer than the whole triangle
	Hidden                       // The whole segment is covered
	Clipped                      // One end of the segment was trimmed
	Split                        // The middle is covered; a second piece was produced
)

func (o Occlusion) String() string {
	switch o {
	case NoOcclusion:
		return "no-occlusion"
	case InFront:
		return "in-front"
	case Hidden:
		return "hidden"
	case Clipped:
		return "clipped"
	case Split:
		return "split"
	default:
		return "unknown"
	}
}

// Result describes what Occlude did to a segment.
type Result struct {
	State Occlusion

	// Segment is the remaining piece of the input. It equals the input
	// unless State is Clipped or Split.
	Segment Segment

	// Spawn is the piece on the P0 side of the covered gap. Only valid when
	// State is Split; it has to be tested again on its own.
	Spawn Segment
}

// closeEnoughEps bounds the per-axis distance at which two intercepts are
// treated as the same point.
const closeEnoughEps = 1e-4

// Occlude classifies s against t and trims it where t covers it.
func Occlude(t *Triangle, s Segment) Result {
	keep := Result{State: NoOcclusion, Segment: s}

	if t.Invisible {
		return keep
	}

	// sub-pixel pieces are dropped rather than risk dividing by noise
	if s.LenSq() < 1 {
		keep.State = Hidden
		return keep
	}

	pMin, pMax := s.Bounds()

	if pMax.Z <= t.Min.Z {
		keep.State = InFront
		return keep
	}

	if pMax.X < t.Min.X || t.Max.X < pMin.X {
		return keep
	}
	if pMax.Y < t.Min.Y || t.Max.Y < pMin.Y {
		return keep
	}

	tp0 := t.BaryCoord(s.P0)
	tp1 := t.BaryCoord(s.P1)
	in0 := Inside(tp0)
	in1 := Inside(tp1)

	if in0 && in1 {
		if s.P0.Z < tp0.Z+Epsilon && s.P1.Z < tp1.Z+Epsilon {
			return keep
		}

		// the segment punctures the triangle or is otherwise
		// ambiguous; treat it as covered
		keep.State = Hidden
		return keep
	}

	var hits [3]math3d.Vec3
	n := 0
	for i := range 3 {
		is, it, ok := interceptLines(s.P0, s.P1, t.Screen[i], t.Screen[(i+1)%3])
		if !ok {
			continue
		}
		// crossing in front of the triangle edge does not occlude
		if is.Z <= it.Z {
			continue
		}
		hits[n] = is
		n++
	}

	if n == 0 {
		return keep
	}

	if n == 3 {
		switch {
		case closeEnough(hits[0], hits[2]) || closeEnough(hits[1], hits[2]):
			n = 2
		case closeEnough(hits[0], hits[1]):
			hits[1] = hits[2]
			n = 2
		default:
			// only very small triangles get here; discard the segment
			keep.State = Hidden
			return keep
		}
	}

	if n == 2 && closeEnough(hits[0], hits[1]) {
		n = 1
	}

	if n == 1 {
		switch {
		case in0:
			keep.Segment.P0 = hits[0]
			keep.State = Clipped
		case in1:
			keep.Segment.P1 = hits[0]
			keep.State = Clipped
		}
		// otherwise a tangent: nothing to trim
		return keep
	}

	d00 := hits[0].DistSqXY(s.P0)
	d01 := hits[1].DistSqXY(s.P0)
	d10 := hits[0].DistSqXY(s.P1)
	d11 := hits[1].DistSqXY(s.P1)

	if (d00 < Epsilon && d11 < Epsilon) || (d01 < Epsilon && d10 < Epsilon) {
		keep.State = Hidden
		return keep
	}

	switch {
	case d00 < Epsilon:
		keep.Segment.P0 = hits[1]
		keep.State = Clipped
		return keep
	case d01 < Epsilon:
		keep.Segment.P0 = hits[0]
		keep.State = Clipped
		return keep
	case d10 < Epsilon:
		keep.Segment.P1 = hits[1]
		keep.State = Clipped
		return keep
	case d11 < Epsilon:
		keep.Segment.P1 = hits[0]
		keep.State = Clipped
		return keep
	}

	// Neither end touches an intercept: the gap is strictly inside.
	near, far := hits[0], hits[1]
	if d00 > d01 {
		near, far = far, near
	}

	keep.State = Split
	keep.Spawn = Segment{P0: s.P0, P1: near}
	keep.Segment.P0 = far
	return keep
}

// interceptLines intersects segment p0-p1 with segment p2-p3 in x/y.
// It returns the crossing on each segment with depth interpolated along it.
// Near-parallel lines never intersect.
func interceptLines(p0, p1, p2, p3 math3d.Vec3) (onS, onT math3d.Vec3, ok bool) {
	s0 := p1.Sub(p0)
	s1 := p3.Sub(p2)

	d := s0.X*s1.Y - s1.X*s0.Y
	if -Epsilon < d && d < Epsilon {
		return onS, onT, false
	}

	qx := p0.X - p2.X
	qy := p0.Y - p2.Y
	r0 := (s1.X*qy - s1.Y*qx) / d
	r1 := (s0.X*qy - s0.Y*qx) / d

	if r0 < 0 || r0 > 1 || r1 < 0 || r1 > 1 {
		return onS, onT, false
	}

	return p0.Add(s0.Scale(r0)), p2.Add(s1.Scale(r1)), true
}

func closeEnough(a, b math3d.Vec3) bool {
	return a.ApproxEqual(b, closeEnoughEps)
}
