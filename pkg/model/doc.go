// Package model provides the in-memory weighted graph used by the coarsening
// and balancing algorithms.
//
// # Overview
//
// A [Model] is a directed edge multiset plus a weight per vertex. The vertex
// type is any [cmp.Ordered] type: it must be hashable and comparable for map
// lookups, and orderable so that every algorithm can break ties the same way
// on every run. Nothing in the core needs to print a vertex.
//
//	m := model.New[string]()
//	m.AddVertex("a", 3)
//	m.AddUndirected(model.Edge[string]{Start: "a", End: "b", Weight: 1})
//
// Undirected links are stored as two directed edges. Parallel edges are kept;
// [Model.PairWeights] sums them per ordered pair, and [Model.LinkWeights] per
// unordered pair with every undirected link counted once.
//
// # Ordering
//
// Edges keep insertion order and [Model.Vertices] is sorted ascending. Those two
// orders are the only tie-breaks the downstream packages rely on, which makes
// coarsening and partitioning reproducible for a fixed input.
//
// # Serialization
//
// The JSON wire format lives in pkg/graph; use graph.ToModel and
// graph.FromModel to convert.
package model
