package balance

import (
	"cmp"
	"slices"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/model"
)

// MaxBruteForceVertices bounds [BruteForce], which enumerates every
// composition of the line.
const MaxBruteForceVertices = 24

// BruteForce computes the same optimum as [Partition] by trying every way to
// cut line into k contiguous parts. Costs are summed directly from pairs
// without any table, so it doubles as an independent check of the DP.
func BruteForce[N cmp.Ordered](line []N, weight func(N) int64, pairs map[model.Pair[N]]int64, k int) (int64, []int, error) {
	n := len(line)
	if err := errors.ValidatePartitionCount(k, n); err != nil {
		return 0, nil, err
	}
	if n > MaxBruteForceVertices {
		return 0, nil, errors.New(errors.ErrCodeInvalidInput, "brute force is limited to %d vertices, got %d", MaxBruteForceVertices, n)
	}
	pos, err := positions(line)
	if err != nil {
		return 0, nil, err
	}

	type link struct {
		from, to int
		w        int64
	}
	var edges []link
	for p, w := range pairs {
		s, ok1 := pos[p.Start]
		e, ok2 := pos[p.End]
		if !ok1 || !ok2 {
			return 0, nil, errors.New(errors.ErrCodeNotFound, "edge %v -> %v is not on the line", p.Start, p.End)
		}
		if s != e {
			edges = append(edges, link{min(s, e), max(s, e), w})
		}
	}

	cost := func(i, j int) int64 {
		var c int64
		for x := i; x <= j; x++ {
			c += weight(line[x])
		}
		for _, e := range edges {
			inFrom := e.from >= i && e.from <= j
			inTo := e.to >= i && e.to <= j
			if inFrom || inTo {
				c += e.w
			}
		}
		return c
	}

	best := unreachable
	var bestCuts []int
	cuts := make([]int, 0, k-1)
	var walk func(start, parts int, worst int64)
	walk = func(start, parts int, worst int64) {
		if parts == 1 {
			worst = max(worst, cost(start, n-1))
			if worst < best {
				best, bestCuts = worst, slices.Clone(cuts)
			}
			return
		}
		for end := start; end <= n-parts; end++ {
			cuts = append(cuts, end)
			walk(end+1, parts-1, max(worst, cost(start, end)))
			cuts = cuts[:len(cuts)-1]
		}
	}
	walk(0, k, 0)
	return best, bestCuts, nil
}
