// Package graph provides the wire formats of linepart: weighted input graphs
// and partitioning results.
//
// The package sits at the serialization boundary between the generic
// algorithm packages and external formats:
//
//   - [Graph], [Node], [Edge]: input graphs (this package)
//   - model.Model[string]: the in-memory graph the algorithms consume
//   - [Partitioning]: the result of a pipeline run (this package)
//
// Use [ToModel]/[FromModel] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format with optional weights:
//
//	{
//	  "directed": false,
//	  "nodes": [{"id": "sw1", "weight": 3}, {"id": "h1"}],
//	  "edges": [{"from": "sw1", "to": "h1", "weight": 2}]
//	}
//
// Missing weights default to 1. Nodes that appear only in edges are added
// with the default weight. In an undirected graph every link is listed once
// and stored in both directions.
//
// Common operations:
//
//	m, _ := graph.ReadGraphFile("net.json")     // File → Model
//	graph.WriteGraphFile(m, "out.json")         // Model → File
//	data, _ := graph.MarshalGraph(m)            // Model → []byte
//	g, _ := graph.UnmarshalGraph(data)          // []byte → Graph
//
// # Result Serialization
//
// A [Partitioning] holds clusters, the embedded line, the cut positions and
// per-partition costs, and the node to partition assignment:
//
//	p, _ := graph.ReadPartitioningFile("result.json")
//	fmt.Println(p.PartitionOf("h1"))
//
// # Concurrency
//
// All functions are safe for concurrent use on distinct values.
package graph
