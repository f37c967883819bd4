package balance

import (
	"cmp"
	"context"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/observability"
)

// DefaultMaxPasses caps RankSwap passes. Every accepted swap strictly evens out
// a partition pair, so the loop always ends; the cap only bounds latency.
const DefaultMaxPasses = 1000

// OddPolicy decides how RankSwap handles an odd partition count.
type OddPolicy int

const (
	// OddRotate re-ranks partitions at the start of every pass and leaves the
	// median partition unpaired for that pass only. As cut sizes change, a
	// different partition may sit out the next pass.
	OddRotate OddPolicy = iota
	// OddReject refuses odd partition counts with INVALID_PARTITION_COUNT.
	OddReject
)

// SwapOptions configures [RankSwap].
type SwapOptions struct {
	// K is the number of partitions. Required.
	K int

	// Intervals is the number of intervals per partition. Zero means
	// DefaultIntervals(len(line), K).
	Intervals int

	// Seed seeds the interval pairing permutation.
	Seed uint64

	// MaxPasses caps the number of passes. Zero means DefaultMaxPasses.
	MaxPasses int

	// OddK selects the odd partition count policy.
	OddK OddPolicy

	// Logger receives per-pass debug lines. Nil discards them.
	Logger *log.Logger
}

// swapObserver, when set, sees the cut sizes after every accepted swap.
// Tests use it to check monotonicity.
var swapObserver func(cuts []int64)

// SwapResult is the outcome of [RankSwap].
type SwapResult[N comparable] struct {
	// Line is the reordered line. Partition i still spans
	// [Boundaries[i], Boundaries[i+1]).
	Line       []N
	Boundaries []int
	// CutSizes holds the total node weight of each partition after swapping.
	CutSizes []int64
	// Baseline is the heaviest partition before any swap.
	Baseline  int64
	Passes    int
	Swaps     int
	Converged bool
	Stats     Stats
}

type item[N comparable] struct {
	node   N
	weight int64
}

// RankSwap rebalances an evenly split line by swapping elements between
// partitions.
//
// The line is cut into K partitions at [Boundaries] and each partition into
// Intervals intervals, each sorted by descending weight. A seeded random
// permutation pairs interval j of one partition with interval perm[j] of its
// partner. Each pass ranks partitions by weight and pairs the heaviest with the
// lightest, the second heaviest with the second lightest, and so on. For every
// element of a paired interval, the element of the partner interval whose swap
// gives the smallest pair maximum is swapped in, if that strictly improves the
// pair maximum. Passes repeat until one makes no swap.
//
// The result is a local optimum: no single swap between paired intervals
// lowers the heavier side of its pair. The overall maximum never increases.
func RankSwap[N comparable](ctx context.Context, line []N, weight func(N) int64, opts SwapOptions) (*SwapResult[N], error) {
	n, k := len(line), opts.K
	if err := errors.ValidatePartitionCount(k, n); err != nil {
		return nil, err
	}
	if k%2 == 1 && opts.OddK == OddReject {
		return nil, errors.New(errors.ErrCodeInvalidPartitionCount, "rank swap pairs partitions; got odd count %d", k)
	}
	if opts.Intervals < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "interval count must be positive, got %d", opts.Intervals)
	}
	if opts.Intervals == 0 {
		opts.Intervals = DefaultIntervals(n, k)
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = DefaultMaxPasses
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	r := opts.Intervals

	q := Boundaries(n, k)
	parts := make([][][]item[N], k)
	cuts := make([]int64, k)
	for i := range k {
		parts[i] = make([][]item[N], r)
		span := q[i+1] - q[i]
		for j := range r {
			lo, hi := q[i]+j*span/r, q[i]+(j+1)*span/r
			iv := make([]item[N], 0, hi-lo)
			for _, v := range line[lo:hi] {
				w := weight(v)
				iv = append(iv, item[N]{node: v, weight: w})
				cuts[i] += w
			}
			slices.SortStableFunc(iv, func(a, b item[N]) int { return cmp.Compare(b.weight, a.weight) })
			parts[i][j] = iv
		}
	}

	res := &SwapResult[N]{Boundaries: q, Baseline: slices.Max(cuts)}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))
	perm := rng.Perm(r)

	for res.Passes < opts.MaxPasses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Passes++
		swaps := 0
		for _, pair := range pairPartitions(cuts) {
			p1, p2 := pair[0], pair[1]
			for j := range r {
				swaps += swapIntervals(parts[p1][j], parts[p2][perm[j]], &cuts[p1], &cuts[p2], cuts, swapObserver)
			}
		}
		res.Swaps += swaps

		worst := slices.Max(cuts)
		opts.Logger.Debug("rank swap pass", "pass", res.Passes, "swaps", swaps, "max", worst)
		observability.Algorithm().OnSwapPass(ctx, res.Passes, swaps, worst)

		if swaps == 0 {
			res.Converged = true
			break
		}
	}

	res.Line = make([]N, 0, n)
	for _, p := range parts {
		for _, iv := range p {
			for _, it := range iv {
				res.Line = append(res.Line, it.node)
			}
		}
	}
	res.CutSizes = cuts
	res.Stats = Summarize(cuts)
	return res, nil
}

// pairPartitions ranks partitions by descending weight (ties by index) and
// pairs rank i with rank k-1-i. With odd k the median rank is left out.
func pairPartitions(cuts []int64) [][2]int {
	rank := make([]int, len(cuts))
	for i := range rank {
		rank[i] = i
	}
	slices.SortStableFunc(rank, func(a, b int) int { return cmp.Compare(cuts[b], cuts[a]) })

	k := len(cuts)
	pairs := make([][2]int, 0, k/2)
	for i := range k / 2 {
		pairs = append(pairs, [2]int{rank[i], rank[k-1-i]})
	}
	return pairs
}

// swapIntervals runs one sweep over a and returns the number of swaps made.
// cut1 and cut2 are the weights of the partitions owning a and b.
func swapIntervals[N comparable](a, b []item[N], cut1, cut2 *int64, all []int64, onSwap func([]int64)) int {
	swaps := 0
	for x := range a {
		best := -1
		bestMax := max(*cut1, *cut2)
		for y := range b {
			d := b[y].weight - a[x].weight
			if m := max(*cut1+d, *cut2-d); m < bestMax {
				best, bestMax = y, m
			}
		}
		if best < 0 {
			continue
		}
		d := b[best].weight - a[x].weight
		*cut1 += d
		*cut2 -= d
		a[x], b[best] = b[best], a[x]
		swaps++
		if onSwap != nil {
			onSwap(all)
		}
	}
	return swaps
}
