// Package pkg holds the libraries behind linepart, a tool that coarsens a
// weighted graph into clusters, lays the clusters out on a line and cuts the
// line into k balanced partitions.
//
// # Layout
//
//  1. [disjoint] - union-find with per-set weight aggregation
//  2. [model] - the in-memory weighted graph the algorithms work on
//  3. [transform] - common-neighbor reweighting of edges
//  4. [coarsen] - affinity clustering by repeated edge contraction
//  5. [embed] - linear ordering of a clustering
//  6. [balance] - rank-swap balancing and the interval partition DP
//  7. [pipeline] - orchestration, caching and rendering of results
//  8. [graph], [io], [render] - serialization, files and Graphviz output
//  9. [cache], [errors], [observability], [generate], [buildinfo] - support
//
// # Data Flow
//
//	graph JSON
//	     ↓
//	[graph.ToModel]
//	     ↓
//	[transform] (optional) → [coarsen] → [embed]
//	     ↓
//	[balance.RankSwap] (optional) → [balance.Partition]
//	     ↓
//	JSON / CSV / DOT / SVG / PNG / PDF
//
// # Quick Start
//
//	m, _ := graph.ReadGraphFile("net.json")
//	opts := pipeline.Defaults()
//	opts.Partitions = 4
//	res, err := pipeline.NewRunner(nil, nil, nil).Execute(ctx, m, opts)
package pkg
