// Package balance splits a line of weighted nodes into k contiguous partitions
// of near-equal cost.
//
// Two strategies are provided:
//
//   - [RankSwap] is a greedy local search. It keeps the even split from
//     [Boundaries] and swaps elements between heavy and light partitions until
//     no swap helps. It only looks at node weights and runs in roughly
//     O(passes * n^2 / (k*r)) time.
//   - [Partition] is an exact interval dynamic program. It chooses the cut
//     positions that minimize the most expensive partition, where cost
//     includes internal and cut edge weight. It needs O(n^3) memory.
//
// The full pipeline runs RankSwap first to reorder the line and then lets the
// DP choose the final cuts.
//
// # Cost Model
//
// For an inclusive range [i, j] of line positions the DP charges
//
//	B[i,j] + D[i,j] + C[0,j,i-1] + C[i,n-1,j]
//
// that is: node weight, weight of edges inside the range, weight of edges
// crossing the left border and weight of edges crossing the right border.
// Edge direction does not matter: a link between positions p < q is charged to
// every range that holds p or q. [BruteForce] computes the same quantity by
// direct enumeration.
//
// # Quality Metrics
//
// Both strategies report [Stats]: mean, maximum, population standard deviation
// and coefficient of variation of the partition costs.
package balance
