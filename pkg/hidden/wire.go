package hidden

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// HiddenWire tests s against every candidate triangle in m and returns the
// part of it that stays visible. It reports false when the segment is
// entirely hidden.
//
// Pieces split off the segment are pushed onto q and must be passed through
// HiddenWire again; they are unaffected when the remainder is hidden.
func HiddenWire(s Segment, m *BucketMap, q *WorkQueue) (Segment, bool) {
	s, ok, _ := hiddenWire(s, m, q)
	return s, ok
}

// wireCounts tallies classifications for PassStats.
type wireCounts struct {
	clipped, split int
}

func hiddenWire(s Segment, m *BucketMap, q *WorkQueue) (Segment, bool, wireCounts) {
	var c wireCounts

candidates:
	for _, t := range m.Candidates(s) {
		if t.Invisible {
			continue
		}

		r := Occlude(t, s)
		switch r.State {
		case Hidden:
			return Segment{}, false, c
		case InFront:
			// candidates are nearest first, so nothing after this
			// triangle can cover the segment either
			break candidates
		case Split:
			q.Push(r.Spawn)
			c.split++
		case Clipped:
			c.clipped++
		}
		s = r.Segment
	}

	return s, true, c
}

// PassStats summarizes one visibility pass.
type PassStats struct {
	Edges   int // Input segments
	Tested  int // Segments run through HiddenWire, including split pieces
	Visible int // Segments returned
	Hidden  int // Segments dropped as fully hidden
	Clipped int // Clipped classifications
	Split   int // Split classifications
}

func (s *PassStats) add(o PassStats) {
	s.Edges += o.Edges
	s.Tested += o.Tested
	s.Visible += o.Visible
	s.Hidden += o.Hidden
	s.Clipped += o.Clipped
	s.Split += o.Split
}

// LogValue implements slog.LogValuer.
func (s PassStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("edges", s.Edges),
		slog.Int("tested", s.Tested),
		slog.Int("visible", s.Visible),
		slog.Int("hidden", s.Hidden),
		slog.Int("clipped", s.Clipped),
		slog.Int("split", s.Split),
	)
}

// drain runs one edge and everything it spawns through HiddenWire.
func drain(edge Segment, m *BucketMap, q *WorkQueue, out []Segment, st *PassStats) []Segment {
	st.Edges++
	q.Push(edge)
	for {
		s, ok := q.Pop()
		if !ok {
			return out
		}
		st.Tested++

		vis, ok, c := hiddenWire(s, m, q)
		st.Clipped += c.clipped
		st.Split += c.split
		if !ok {
			st.Hidden++
			continue
		}
		st.Visible++
		out = append(out, vis)
	}
}

// Visible returns the visible parts of edges, draining split pieces until
// none remain.
func Visible(edges []Segment, m *BucketMap) []Segment {
	out, _ := Run(edges, m)
	return out
}

// Run is Visible with pass statistics.
func Run(edges []Segment, m *BucketMap) ([]Segment, PassStats) {
	var (
		q   WorkQueue
		st  PassStats
		out = make([]Segment, 0, len(edges))
	)
	for _, e := range edges {
		out = drain(e, m, &q, out, &st)
	}

	Logger().Debug("visibility pass", slog.Any("stats", st))
	return out, st
}

// VisibleParallel is Run spread over workers goroutines. Edges are
// independent, so each worker drains its own queue against the shared,
// read-only map. workers <= 0 uses GOMAXPROCS.
//
// Output order matches the order of edges. The pass stops early only if
// ctx is cancelled.
func VisibleParallel(ctx context.Context, edges []Segment, m *BucketMap, workers int) ([]Segment, PassStats, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	chunk := (len(edges) + workers - 1) / workers
	if chunk == 0 {
		return nil, PassStats{}, ctx.Err()
	}

	results := make([][]Segment, (len(edges)+chunk-1)/chunk)

	var (
		mu    sync.Mutex
		total PassStats
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range results {
		lo := i * chunk
		hi := min(lo+chunk, len(edges))
		g.Go(func() error {
			var (
				q   WorkQueue
				st  PassStats
				out []Segment
			)
			for _, e := range edges[lo:hi] {
				if err := ctx.Err(); err != nil {
					return err
				}
				out = drain(e, m, &q, out, &st)
			}
			results[i] = out

			mu.Lock()
			total.add(st)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, total, err
	}

	n := 0
	for _, r := range results {
		n += len(r)
	}
	out := make([]Segment, 0, n)
	for _, r := range results {
		out = append(out, r...)
	}

	Logger().Debug("visibility pass", slog.Any("stats", total), slog.Int("workers", workers))
	return out, total, nil
}
