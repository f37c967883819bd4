// Package transform rewrites edge lists before coarsening.
package transform

import (
	"cmp"
	"slices"

	"github.com/matzehuels/linepart/pkg/model"
)

// CommonNeighbors returns a new edge list in which the weight of (u, v) is the
// number of vertices w with both w->u and w->v in the input, for u != v.
//
// Pairs with no shared in-neighbor are omitted. Every emitted pair appears in
// both directions with the same weight, and the output is sorted by (Start,
// End). Duplicate input edges are counted once.
//
// Cost is quadratic in the largest in-neighbor list: a hub with d out-edges
// contributes d*(d-1) counter updates. On dense graphs this dominates the whole
// pipeline.
func CommonNeighbors[N cmp.Ordered](edges []model.Edge[N]) []model.Edge[N] {
	// vertex -> distinct out-neighbors
	out := make(map[N]map[N]struct{})
	for _, e := range edges {
		if out[e.Start] == nil {
			out[e.Start] = make(map[N]struct{})
		}
		out[e.Start][e.End] = struct{}{}
	}

	// Each w contributes one shared in-neighbor to every ordered pair of its
	// distinct out-neighbors.
	counts := make(map[model.Pair[N]]int64)
	for _, targets := range out {
		for a := range targets {
			for b := range targets {
				if a != b {
					counts[model.Pair[N]{Start: a, End: b}]++
				}
			}
		}
	}

	result := make([]model.Edge[N], 0, len(counts))
	for p, c := range counts {
		result = append(result, model.Edge[N]{Start: p.Start, End: p.End, Weight: c})
	}
	slices.SortFunc(result, func(x, y model.Edge[N]) int {
		if c := cmp.Compare(x.Start, y.Start); c != 0 {
			return c
		}
		return cmp.Compare(x.End, y.End)
	})
	return result
}

// CommonNeighborModel applies [CommonNeighbors] to m's edges and returns a new
// model with the same vertex weights.
func CommonNeighborModel[N cmp.Ordered](m *model.Model[N]) (*model.Model[N], error) {
	return m.WithEdges(CommonNeighbors(m.Edges()))
}
