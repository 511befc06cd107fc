package hidden

import (
	"fmt"

	"github.com/taigrr/wireplot/pkg/math3d"
)

// Segment is a projected wireframe edge or a piece of one.
type Segment struct {
	P0, P1 math3d.Vec3
}

// Seg creates a Segment.
func Seg(p0, p1 math3d.Vec3) Segment {
	return Segment{P0: p0, P1: p1}
}

// LenSq returns the squared screen-space length.
func (s Segment) LenSq() float64 {
	return s.P0.DistSqXY(s.P1)
}

// Bounds returns the component-wise bounding box of the endpoints.
func (s Segment) Bounds() (min, max math3d.Vec3) {
	return s.P0.Min(s.P1), s.P0.Max(s.P1)
}

func (s Segment) String() string {
	return fmt.Sprintf("%v-%v", s.P0, s.P1)
}

// WorkQueue holds segments that still have to be tested.
// It is FIFO and owned by a single pass; it is not safe for concurrent use.
type WorkQueue struct {
	items []Segment
	head  int
}

// Push appends a segment.
func (q *WorkQueue) Push(s Segment) {
	q.items = append(q.items, s)
}

// Pop removes and returns the oldest segment.
func (q *WorkQueue) Pop() (Segment, bool) {
	if q.head == len(q.items) {
		return Segment{}, false
	}
	s := q.items[q.head]
	q.head++

	// Reuse the backing array once drained
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return s, true
}

// Len returns the number of queued segments.
func (q *WorkQueue) Len() int {
	return len(q.items) - q.head
}
