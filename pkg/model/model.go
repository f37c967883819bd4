package model

import (
	"cmp"
	"errors"
	"maps"
	"slices"
)

// DefaultNodeWeight is the weight assigned to vertices registered without an
// explicit weight, including vertices that are only referenced by edges.
const DefaultNodeWeight int64 = 1

// DefaultEdgeWeight is the weight of edges read without an explicit weight.
const DefaultEdgeWeight int64 = 1

var (
	// ErrNegativeWeight is returned by [Model.AddVertex] and [Model.AddEdge]
	// when a weight is below zero. Balancing arithmetic assumes non-negative
	// weights.
	ErrNegativeWeight = errors.New("weight must not be negative")
)

// Edge is a weighted directed edge. Undirected relationships are represented by
// two edges, one per direction.
type Edge[N cmp.Ordered] struct {
	Start  N
	End    N
	Weight int64
}

// Reverse returns the edge pointing the other way with the same weight.
func (e Edge[N]) Reverse() Edge[N] {
	return Edge[N]{Start: e.End, End: e.Start, Weight: e.Weight}
}

// Pair is an ordered (start, end) key used for summed edge weight lookups.
type Pair[N cmp.Ordered] struct {
	Start N
	End   N
}

// Model is a weighted directed edge multiset with per-vertex weights.
//
// Edges are kept in insertion order; that order is the tie-break for every
// algorithm that picks "the first" of several equal edges. The zero value is
// not usable - use [New] or [FromEdges].
//
// Model is not safe for concurrent mutation.
type Model[N cmp.Ordered] struct {
	weights map[N]int64
	edges   []Edge[N]
	links   map[Pair[N]]int64
}

// New creates an empty model.
func New[N cmp.Ordered]() *Model[N] {
	return &Model[N]{weights: make(map[N]int64), links: make(map[Pair[N]]int64)}
}

// FromEdges builds a model from an edge list. Every endpoint is registered with
// [DefaultNodeWeight].
func FromEdges[N cmp.Ordered](edges []Edge[N]) (*Model[N], error) {
	m := New[N]()
	for _, e := range edges {
		if err := m.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddVertex registers v with the given weight, overwriting any previous weight.
func (m *Model[N]) AddVertex(v N, weight int64) error {
	if weight < 0 {
		return ErrNegativeWeight
	}
	m.weights[v] = weight
	return nil
}

// AddEdge appends e. Endpoints that were never registered are added with
// [DefaultNodeWeight].
func (m *Model[N]) AddEdge(e Edge[N]) error {
	if e.Weight < 0 {
		return ErrNegativeWeight
	}
	m.append(e)
	m.links[linkKey(e)] += e.Weight
	return nil
}

// AddUndirected appends e and its reverse. The pair counts as one link in
// [Model.LinkWeights].
func (m *Model[N]) AddUndirected(e Edge[N]) error {
	if err := m.AddEdge(e); err != nil {
		return err
	}
	m.append(e.Reverse())
	return nil
}

func (m *Model[N]) append(e Edge[N]) {
	m.ensure(e.Start)
	m.ensure(e.End)
	m.edges = append(m.edges, e)
}

// linkKey orders the endpoints so both directions share a key.
func linkKey[N cmp.Ordered](e Edge[N]) Pair[N] {
	if e.End < e.Start {
		return Pair[N]{Start: e.End, End: e.Start}
	}
	return Pair[N]{Start: e.Start, End: e.End}
}

func (m *Model[N]) ensure(v N) {
	if _, ok := m.weights[v]; !ok {
		m.weights[v] = DefaultNodeWeight
	}
}

// HasVertex reports whether v is registered.
func (m *Model[N]) HasVertex(v N) bool {
	_, ok := m.weights[v]
	return ok
}

// Weight returns the weight of v, or zero when v is not registered.
func (m *Model[N]) Weight(v N) int64 { return m.weights[v] }

// WeightFunc returns [Model.Weight] as a function value for the balancers.
func (m *Model[N]) WeightFunc() func(N) int64 { return m.Weight }

// TotalWeight returns the sum of all vertex weights.
func (m *Model[N]) TotalWeight() int64 {
	var sum int64
	for _, w := range m.weights {
		sum += w
	}
	return sum
}

// VertexCount returns the number of registered vertices.
func (m *Model[N]) VertexCount() int { return len(m.weights) }

// EdgeCount returns the number of edges, counting parallel edges separately.
func (m *Model[N]) EdgeCount() int { return len(m.edges) }

// Vertices returns all vertices in ascending order.
func (m *Model[N]) Vertices() []N {
	return slices.Sorted(maps.Keys(m.weights))
}

// Edges returns a copy of the edge list in insertion order.
func (m *Model[N]) Edges() []Edge[N] {
	return slices.Clone(m.edges)
}

// OutEdges groups edges by their start vertex. Each group preserves insertion
// order. Vertices without outgoing edges are absent from the map.
func (m *Model[N]) OutEdges() map[N][]Edge[N] {
	return GroupByStart(m.edges)
}

// Neighbors returns the distinct end vertices of v's outgoing edges in
// ascending order.
func (m *Model[N]) Neighbors(v N) []N {
	seen := make(map[N]struct{})
	for _, e := range m.edges {
		if e.Start == v {
			seen[e.End] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// PairWeights sums edge weights per ordered (start, end) pair. Self-loops are
// kept; callers that care drop them.
func (m *Model[N]) PairWeights() map[Pair[N]]int64 {
	out := make(map[Pair[N]]int64, len(m.edges))
	for _, e := range m.edges {
		out[Pair[N]{Start: e.Start, End: e.End}] += e.Weight
	}
	return out
}

// LinkWeights sums edge weights per unordered vertex pair, keyed with
// Start <= End. A directed edge counts once in either direction; a link added
// with [Model.AddUndirected] counts once, not twice. The interval DP charges
// these weights regardless of which way an edge points along the line.
func (m *Model[N]) LinkWeights() map[Pair[N]]int64 {
	return maps.Clone(m.links)
}

// WithEdges returns a new model sharing this model's vertex weights but with
// the given edge list. Unknown endpoints are registered with the default weight.
func (m *Model[N]) WithEdges(edges []Edge[N]) (*Model[N], error) {
	out := &Model[N]{weights: maps.Clone(m.weights), links: make(map[Pair[N]]int64)}
	for _, e := range edges {
		if err := out.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GroupByStart groups edges by start vertex, preserving the relative order of
// each group.
func GroupByStart[N cmp.Ordered](edges []Edge[N]) map[N][]Edge[N] {
	out := make(map[N][]Edge[N])
	for _, e := range edges {
		out[e.Start] = append(out[e.Start], e)
	}
	return out
}
