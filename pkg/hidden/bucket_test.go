package hidden

import (
	"testing"

	"github.com/taigrr/wireplot/pkg/math3d"
)

func square(x, y, size, z float64) []*Triangle {
	a := math3d.V3(x, y, z)
	b := math3d.V3(x+size, y, z)
	c := math3d.V3(x+size, y+size, z)
	d := math3d.V3(x, y+size, z)
	return []*Triangle{NewTriangle(a, b, c), NewTriangle(a, c, d)}
}

func TestCellOf(t *testing.T) {
	tests := []struct {
		x, y float64
		want CellKey
	}{
		{0, 0, CellKey{0, 0}},
		{15.9, 15.9, CellKey{0, 0}},
		{16, 31.9, CellKey{1, 1}},
		{-0.1, -16, CellKey{-1, -1}},
		{-16.1, 40, CellKey{-2, 2}},
	}
	for _, tc := range tests {
		if got := CellOf(tc.x, tc.y); got != tc.want {
			t.Errorf("CellOf(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestBucketMapCells(t *testing.T) {
	tris := square(0, 0, 20, 1)
	m := NewBucketMap(tris)

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	// x and y both span cells 0..1
	if m.Cells() != 4 {
		t.Errorf("Cells() = %d, want 4", m.Cells())
	}
	if got := m.Cell(CellKey{1, 1}); len(got) != 2 {
		t.Errorf("cell (1,1) holds %d triangles, want 2", len(got))
	}
	if got := m.Cell(CellKey{50, -3}); len(got) != 0 {
		t.Errorf("unknown cell holds %d triangles, want 0", len(got))
	}
}

func TestBucketMapSkipsInvisible(t *testing.T) {
	back := NewTriangle(math3d.V3(0, 0, 0), math3d.V3(0, 10, 0), math3d.V3(10, 0, 0))
	m := NewBucketMap([]*Triangle{back, nil})
	if m.Len() != 0 || m.Cells() != 0 {
		t.Errorf("invisible triangles were bucketed: len %d, cells %d", m.Len(), m.Cells())
	}
	if got := m.Candidates(seg(0, 0, 1, 10, 10, 1)); len(got) != 0 {
		t.Errorf("Candidates on empty map = %d triangles, want 0", len(got))
	}
}

func TestCandidatesDepthOrder(t *testing.T) {
	far := square(0, 0, 40, 9)
	near := square(10, 10, 40, 2)
	mid := square(-20, -20, 40, 5)

	var tris []*Triangle
	tris = append(tris, far...)
	tris = append(tris, near...)
	tris = append(tris, mid...)

	m := NewBucketMap(tris)
	got := m.Candidates(seg(0, 0, 20, 60, 60, 20))

	if len(got) != 6 {
		t.Fatalf("got %d candidates, want 6 (deduplicated)", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Min.Z < got[i-1].Min.Z {
			t.Errorf("candidate %d (z=%v) is nearer than candidate %d (z=%v)",
				i, got[i].Min.Z, i-1, got[i-1].Min.Z)
		}
	}
	if got[0].Min.Z != 2 {
		t.Errorf("first candidate depth = %v, want 2", got[0].Min.Z)
	}

	// The caller's slice keeps its order.
	if tris[0] != far[0] {
		t.Error("NewBucketMap reordered the input slice")
	}
}

func TestCandidatesLocal(t *testing.T) {
	left := square(0, 0, 10, 1)
	right := square(1000, 0, 10, 1)
	m := NewBucketMap(append(left, right...))

	got := m.Candidates(seg(1, 1, 5, 9, 9, 5))
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	for _, tri := range got {
		if tri.Min.X != 0 {
			t.Errorf("candidate from x=%v leaked into a distant query", tri.Min.X)
		}
	}

	// A huge segment is clamped to the occupied cells.
	if got := m.Candidates(seg(-1e9, 5, 5, 1e9, 5, 5)); len(got) != 4 {
		t.Errorf("long segment got %d candidates, want 4", len(got))
	}
}

func TestBucketMapWindow(t *testing.T) {
	huge := NewTriangle(math3d.V3(-1e7, -1e7, 1), math3d.V3(1e7, -1e7, 1), math3d.V3(0, 1e7, 1))
	m := NewBucketMap([]*Triangle{huge}, Window(-100, -100, 100, 100))

	// [-100, 100] covers cells -7..6 on each axis.
	if m.Cells() != 14*14 {
		t.Errorf("Cells() = %d, want %d", m.Cells(), 14*14)
	}
	if got := m.Candidates(seg(0, 0, 5, 10, 0, 5)); len(got) != 1 {
		t.Errorf("got %d candidates, want 1", len(got))
	}

	outside := square(500, 500, 10, 1)
	m = NewBucketMap(outside, Window(-100, -100, 100, 100))
	if m.Cells() != 0 {
		t.Errorf("triangles outside the window were bucketed into %d cells", m.Cells())
	}
}

func TestBucketMapDefaultExtent(t *testing.T) {
	huge := NewTriangle(math3d.V3(-1e7, -1e7, 1), math3d.V3(1e7, -1e7, 1), math3d.V3(0, 1e7, 1))
	m := NewBucketMap([]*Triangle{huge})

	// [-MaxExtent, MaxExtent] covers cells -256..256 on each axis.
	if want := 513 * 513; m.Cells() != want {
		t.Errorf("Cells() = %d, want %d", m.Cells(), want)
	}
	if got := m.Candidates(seg(0, 0, 5, 10, 0, 5)); len(got) != 1 {
		t.Errorf("got %d candidates, want 1", len(got))
	}

	far := square(10*MaxExtent, 0, 10, 1)
	if m := NewBucketMap(far); m.Cells() != 0 || m.Len() != 2 {
		t.Errorf("far triangles: cells %d, len %d, want 0 and 2", m.Cells(), m.Len())
	}
}
