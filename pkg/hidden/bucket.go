package hidden

import (
	"cmp"
	"math"
	"slices"
)

// CellSize is the edge length of a screen bucket in screen units.
const CellSize = 16

// MaxExtent bounds bucketing when no Window is given: triangles are only
// entered into cells within [-MaxExtent, MaxExtent] on both axes. A face
// just past the near plane can project millions of units wide, and the
// cells it covers grow with the square of that.
const MaxExtent = 4096

// CellKey addresses one screen bucket.
type CellKey struct {
	X, Y int
}

// CellOf returns the bucket containing screen point (x, y).
func CellOf(x, y float64) CellKey {
	return CellKey{
		X: int(math.Floor(x / CellSize)),
		Y: int(math.Floor(y / CellSize)),
	}
}

// BucketMap is a coarse screen grid mapping each cell to the triangles whose
// bounding boxes overlap it.
//
// Every cell list is ordered nearest first (ascending Min.Z), which is what
// lets the visibility pass stop at the first InFront triangle. The map is
// read-only once built and safe for concurrent readers.
type BucketMap struct {
	cells     map[CellKey][]*Triangle
	triangles []*Triangle
	lo, hi    CellKey // occupied extent

	wlo, whi CellKey // cells that may be filled
}

// BucketOption configures NewBucketMap.
type BucketOption func(*BucketMap)

// Window limits bucketing to the screen rectangle [minX, maxX] x [minY, maxY]
// in place of the default MaxExtent square. Triangles reaching past it are
// only entered into cells inside it. Occlusion outside the window is no
// longer detected, so only use it when the visible output is cropped to the
// same window.
func Window(minX, minY, maxX, maxY float64) BucketOption {
	return func(m *BucketMap) {
		m.wlo = CellOf(minX, minY)
		m.whi = CellOf(maxX, maxY)
	}
}

// NewBucketMap sorts the visible triangles by depth and buckets them.
// Invisible triangles are left out. The input slice is not modified, but
// each triangle records its depth rank, so a triangle belongs to at most
// one map at a time.
func NewBucketMap(tris []*Triangle, opts ...BucketOption) *BucketMap {
	m := &BucketMap{
		cells: make(map[CellKey][]*Triangle),
		wlo:   CellOf(-MaxExtent, -MaxExtent),
		whi:   CellOf(MaxExtent, MaxExtent),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, t := range tris {
		if t == nil || t.Invisible {
			continue
		}
		m.triangles = append(m.triangles, t)
	}

	slices.SortStableFunc(m.triangles, func(a, b *Triangle) int {
		return cmp.Compare(a.Min.Z, b.Min.Z)
	})

	for i, t := range m.triangles {
		t.rank = i
		lo := CellOf(t.Min.X, t.Min.Y)
		hi := CellOf(t.Max.X, t.Max.Y)
		lo = CellKey{max(lo.X, m.wlo.X), max(lo.Y, m.wlo.Y)}
		hi = CellKey{min(hi.X, m.whi.X), min(hi.Y, m.whi.Y)}
		if lo.X > hi.X || lo.Y > hi.Y {
			continue
		}
		if len(m.cells) == 0 {
			m.lo, m.hi = lo, hi
		}
		m.lo = CellKey{min(m.lo.X, lo.X), min(m.lo.Y, lo.Y)}
		m.hi = CellKey{max(m.hi.X, hi.X), max(m.hi.Y, hi.Y)}
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				k := CellKey{x, y}
				m.cells[k] = append(m.cells[k], t)
			}
		}
	}

	return m
}

// Cell returns the triangles bucketed under k, nearest first.
// Unknown cells yield an empty list.
func (m *BucketMap) Cell(k CellKey) []*Triangle {
	return m.cells[k]
}

// Candidates returns every triangle sharing a cell with the segment's
// bounding box, deduplicated and nearest first.
func (m *BucketMap) Candidates(s Segment) []*Triangle {
	if len(m.cells) == 0 {
		return nil
	}

	pMin, pMax := s.Bounds()
	lo := CellOf(pMin.X, pMin.Y)
	hi := CellOf(pMax.X, pMax.Y)

	// Cells outside the occupied extent are empty; long off-screen
	// segments would otherwise walk millions of them.
	lo = CellKey{max(lo.X, m.lo.X), max(lo.Y, m.lo.Y)}
	hi = CellKey{min(hi.X, m.hi.X), min(hi.Y, m.hi.Y)}

	var out []*Triangle
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			out = append(out, m.cells[CellKey{x, y}]...)
		}
	}

	slices.SortFunc(out, func(a, b *Triangle) int {
		return cmp.Compare(a.rank, b.rank)
	})
	return slices.Compact(out)
}

// Len returns the number of bucketed triangles.
func (m *BucketMap) Len() int {
	return len(m.triangles)
}

// Cells returns the number of non-empty buckets.
func (m *BucketMap) Cells() int {
	return len(m.cells)
}
