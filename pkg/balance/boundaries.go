package balance

import (
	"math"
)

// Boundaries splits n positions into k partitions of near-equal length. The
// result has k+1 entries; partition i is [q[i], q[i+1]) with
// q[i] = floor(i*n/k).
func Boundaries(n, k int) []int {
	q := make([]int, k+1)
	for i := range q {
		q[i] = i * n / k
	}
	return q
}

// DefaultIntervals is the interval count RankSwap uses when none is given:
// floor(sqrt(n/k)), at least 1.
func DefaultIntervals(n, k int) int {
	if k <= 0 {
		return 1
	}
	r := int(math.Sqrt(float64(n / k)))
	return max(r, 1)
}

// PartitionWeights sums node weights per partition for boundaries q.
func PartitionWeights[N comparable](line []N, weight func(N) int64, q []int) []int64 {
	out := make([]int64, len(q)-1)
	for i := range out {
		for _, v := range line[q[i]:q[i+1]] {
			out[i] += weight(v)
		}
	}
	return out
}

// Baseline returns the heaviest partition of line split evenly into k parts
// without any rebalancing. It is the reference point RankSwap improves on.
func Baseline[N comparable](line []N, weight func(N) int64, k int) int64 {
	if k <= 0 || len(line) == 0 {
		return 0
	}
	var worst int64
	for _, w := range PartitionWeights(line, weight, Boundaries(len(line), k)) {
		worst = max(worst, w)
	}
	return worst
}
