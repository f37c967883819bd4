package balance

import (
	"cmp"
	"context"
	"io"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/model"
	"github.com/matzehuels/linepart/pkg/observability"
)

// DefaultMaxVertices bounds the line length accepted by [Partition]. The J and
// C tables hold n^3 int64 cells each, so 256 vertices already need about
// 270 MB.
const DefaultMaxVertices = 256

const unreachable = int64(math.MaxInt64)

// DPOptions configures [Partition].
type DPOptions struct {
	// K is the number of contiguous partitions. Required.
	K int

	// Workers bounds the goroutines filling table rows. Zero means GOMAXPROCS.
	Workers int

	// MaxVertices rejects longer lines. Zero means DefaultMaxVertices; a
	// negative value disables the check.
	MaxVertices int

	// Logger receives per-table debug lines. Nil discards them.
	Logger *log.Logger
}

// Range is an inclusive span [Start, End] of line positions.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of positions in r.
func (r Range) Len() int { return r.End - r.Start + 1 }

// DPResult is the outcome of [Partition].
type DPResult[N comparable] struct {
	// Cuts holds the inclusive right end of the first K-1 partitions.
	Cuts       []int
	Ranges     []Range
	Partitions [][]N
	// Costs holds the cost of each partition: node weight, internal edge
	// weight and the edge weight cut at both borders.
	Costs []int64
	// Optimum is the smallest achievable maximum partition cost.
	Optimum int64
	Stats   Stats
	// Assignment maps every node to its 1-based partition index.
	Assignment map[N]int
}

// level holds A[.,.,q] and Ap[.,.,q] for one partition count q.
type level struct {
	cost *tri[int64]
	cuts *tri[[]int]
}

// dpTables holds every table of one Partition call. Line positions are
// 0-based and ranges inclusive.
//
//	J[i,j,k]   link weight between [i,j] and position k > j
//	D[i,j]     link weight inside [i,j]
//	B[i,j]     node weight of [i,j]
//	C[i,j,cut] link weight between [i,cut] and (cut,j]
//
// Links are unordered: an edge counts the same whichever way it points along
// the line. Self-loops are ignored.
type dpTables struct {
	n       int
	workers int
	j, c    *cube
	d, b    *tri[int64]
	levels  map[int]*level
}

// Partition splits line into opts.K contiguous non-empty partitions so that the
// most expensive partition is as cheap as possible.
//
// A partition's cost is its node weight plus the weight of edges inside it plus
// the weight of edges crossing its two borders. pairs holds summed link
// weights, as returned by model.Model.LinkWeights; (a,b) and (b,a) entries
// are added together. Both endpoints of every pair must be on the line.
//
// The split is exact. Splitting [i,j] into q parts tries every position of the
// border after the first q/2 parts and solves both sides independently, so only
// the partition counts in QList(K) are ever tabulated.
//
// Building J and C takes O(n^3) time and memory, which dominates the
// O(n^2 log k) DP itself and limits practical line lengths to a few hundred
// vertices; see DPOptions.MaxVertices.
func Partition[N cmp.Ordered](ctx context.Context, line []N, weight func(N) int64, pairs map[model.Pair[N]]int64, opts DPOptions) (*DPResult[N], error) {
	n, k := len(line), opts.K
	if err := errors.ValidatePartitionCount(k, n); err != nil {
		return nil, err
	}
	if opts.MaxVertices == 0 {
		opts.MaxVertices = DefaultMaxVertices
	}
	if opts.MaxVertices > 0 && n > opts.MaxVertices {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"line has %d vertices; the interval DP is limited to %d", n, opts.MaxVertices)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	pos, err := positions(line)
	if err != nil {
		return nil, err
	}

	t := &dpTables{
		n:       n,
		workers: opts.Workers,
		j:       newCube(n),
		c:       newCube(n),
		d:       newTri[int64](n),
		b:       newTri[int64](n),
		levels:  make(map[int]*level),
	}
	for p, w := range pairs {
		s, ok := pos[p.Start]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "edge %v -> %v: %v is not on the line", p.Start, p.End, p.Start)
		}
		e, ok := pos[p.End]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "edge %v -> %v: %v is not on the line", p.Start, p.End, p.End)
		}
		if e < s {
			s, e = e, s
		}
		if s < e {
			t.j.set(s, s, e, t.j.at(s, s, e)+w)
		}
	}
	weights := make([]int64, n)
	for i, v := range line {
		weights[i] = weight(v)
	}

	if err := t.build(ctx, weights, opts.Logger); err != nil {
		return nil, err
	}
	for _, q := range QList(k) {
		start := time.Now()
		if err := t.fillLevel(ctx, q); err != nil {
			return nil, err
		}
		opts.Logger.Debug("dp level", "q", q, "duration", time.Since(start))
		observability.Algorithm().OnDPLevel(ctx, q, time.Since(start))
	}

	top := t.levels[k]
	res := &DPResult[N]{
		Cuts:       slices.Clone(top.cuts.at(0, n-1)),
		Optimum:    top.cost.at(0, n-1),
		Assignment: make(map[N]int, n),
	}
	res.Ranges = cutsToRanges(res.Cuts, n)
	base := t.levels[1].cost
	for idx, r := range res.Ranges {
		part := slices.Clone(line[r.Start : r.End+1])
		res.Partitions = append(res.Partitions, part)
		res.Costs = append(res.Costs, base.at(r.Start, r.End))
		for _, v := range part {
			res.Assignment[v] = idx + 1
		}
	}
	res.Stats = Summarize(res.Costs)
	return res, nil
}

// positions maps each node to its index on the line.
func positions[N comparable](line []N) (map[N]int, error) {
	pos := make(map[N]int, len(line))
	for i, v := range line {
		if _, dup := pos[v]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %v appears twice on the line", v)
		}
		pos[v] = i
	}
	return pos, nil
}

func cutsToRanges(cuts []int, n int) []Range {
	out := make([]Range, 0, len(cuts)+1)
	start := 0
	for _, c := range cuts {
		out = append(out, Range{Start: start, End: c})
		start = c + 1
	}
	return append(out, Range{Start: start, End: n - 1})
}

// rows runs fn for every row i in parallel. Rows must only write their own
// cells and read cells finalized by an earlier call.
func (t *dpTables) rows(ctx context.Context, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i := 0; i < t.n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	return g.Wait()
}

// build fills J, then B and D, then C. J must be seeded with J[i,i,k].
func (t *dpTables) build(ctx context.Context, weights []int64, logger *log.Logger) error {
	n := t.n

	err := t.rows(ctx, func(i int) {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				t.j.set(i, j, k, t.j.at(i, j-1, k)+t.j.at(j, j, k))
			}
		}
	})
	if err != nil {
		return err
	}
	logger.Debug("dp table built", "table", "J", "n", n)

	err = t.rows(ctx, func(i int) {
		t.b.set(i, i, weights[i])
		for j := i + 1; j < n; j++ {
			t.b.set(i, j, t.b.at(i, j-1)+weights[j])
			t.d.set(i, j, t.d.at(i, j-1)+t.j.at(i, j-1, j))
		}
	})
	if err != nil {
		return err
	}
	logger.Debug("dp table built", "table", "B,D", "n", n)

	err = t.rows(ctx, func(i int) {
		for cut := i; cut < n-1; cut++ {
			t.c.set(i, cut+1, cut, t.j.at(i, cut, cut+1))
			for j := cut + 2; j < n; j++ {
				t.c.set(i, j, cut, t.c.at(i, j-1, cut)+t.j.at(i, cut, j))
			}
		}
	})
	if err != nil {
		return err
	}
	logger.Debug("dp table built", "table", "C", "n", n)
	return nil
}

// partitionCost is A[i,j,1]: node weight, internal edges, and edges crossing
// the left border (from [0,i-1]) and the right border (to [j+1,n-1]).
func (t *dpTables) partitionCost(i, j int) int64 {
	cost := t.b.at(i, j) + t.d.at(i, j)
	if i > 0 {
		cost += t.c.at(0, j, i-1)
	}
	if j < t.n-1 {
		cost += t.c.at(i, t.n-1, j)
	}
	return cost
}

// fillLevel computes A[.,.,q] and Ap[.,.,q]. Levels q/2 and q-q/2 must exist.
func (t *dpTables) fillLevel(ctx context.Context, q int) error {
	n := t.n
	lv := &level{cost: newTri[int64](n), cuts: newTri[[]int](n)}

	if q == 1 {
		err := t.rows(ctx, func(i int) {
			for j := i; j < n; j++ {
				lv.cost.set(i, j, t.partitionCost(i, j))
			}
		})
		if err != nil {
			return err
		}
		t.levels[1] = lv
		return nil
	}

	left, right := t.levels[q/2], t.levels[q-q/2]
	ql, qr := q/2, q-q/2
	err := t.rows(ctx, func(i int) {
		for j := i; j < n; j++ {
			if j-i+1 < q {
				lv.cost.set(i, j, unreachable)
				continue
			}
			best, bestCut := unreachable, -1
			for cut := i + ql - 1; cut <= j-qr; cut++ {
				if v := max(left.cost.at(i, cut), right.cost.at(cut+1, j)); v < best {
					best, bestCut = v, cut
				}
			}
			cuts := make([]int, 0, q-1)
			cuts = append(cuts, left.cuts.at(i, bestCut)...)
			cuts = append(cuts, bestCut)
			cuts = append(cuts, right.cuts.at(bestCut+1, j)...)
			lv.cost.set(i, j, best)
			lv.cuts.set(i, j, cuts)
		}
	})
	if err != nil {
		return err
	}
	t.levels[q] = lv
	return nil
}
