package graph

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/model"
)

// =============================================================================
// Graph - Weighted Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for weighted input graphs.
// Used for files, API requests, and cache keys.
//
// An undirected graph lists every link once; [ToModel] stores it in both
// directions. [FromModel] detects symmetric models and folds them back.
type Graph struct {
	Directed bool   `json:"directed"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

// Node is a weighted vertex. A nil Weight means model.DefaultNodeWeight.
type Node struct {
	ID     string         `json:"id"`
	Weight *int64         `json:"weight,omitempty"`
	Label  string         `json:"label,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// NodeWeight returns the node weight, falling back to the default.
func (n *Node) NodeWeight() int64 {
	if n.Weight == nil {
		return model.DefaultNodeWeight
	}
	return *n.Weight
}

// Edge is a weighted link. A nil Weight means model.DefaultEdgeWeight.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight *int64 `json:"weight,omitempty"`
}

// EdgeWeight returns the edge weight, falling back to the default.
func (e *Edge) EdgeWeight() int64 {
	if e.Weight == nil {
		return model.DefaultEdgeWeight
	}
	return *e.Weight
}

// Weight returns a pointer to w, for building literals.
func Weight(w int64) *int64 { return &w }

// =============================================================================
// Model ↔ Graph Conversion
// =============================================================================

// ToModel converts a Graph into the model used by the algorithms.
//
// Node IDs must be unique and valid; weights must be non-negative. Nodes
// referenced only by edges are added with the default weight. Self-loops are
// kept; the coarsener ignores them.
func ToModel(g Graph) (*model.Model[string], error) {
	m := model.New[string]()
	for _, n := range g.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, err
		}
		if m.HasVertex(n.ID) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node %q", n.ID)
		}
		if err := m.AddVertex(n.ID, n.NodeWeight()); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %s", n.ID)
		}
	}

	for _, e := range g.Edges {
		for _, id := range []string{e.From, e.To} {
			if err := errors.ValidateNodeID(id); err != nil {
				return nil, err
			}
		}
		me := model.Edge[string]{Start: e.From, End: e.To, Weight: e.EdgeWeight()}
		var err error
		if g.Directed {
			err = m.AddEdge(me)
		} else {
			err = m.AddUndirected(me)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s→%s", e.From, e.To)
		}
	}
	return m, nil
}

// FromModel converts a model to its serialization format. Nodes are sorted
// by ID and edges by endpoints for deterministic output.
//
// If every edge has a reverse twin of equal weight the graph is written as
// undirected with one entry per link.
func FromModel(m *model.Model[string]) Graph {
	edges := m.Edges()
	directed := !symmetric(edges)

	out := Graph{
		Directed: directed,
		Nodes:    make([]Node, 0, m.VertexCount()),
		Edges:    make([]Edge, 0, len(edges)),
	}
	for _, v := range m.Vertices() {
		n := Node{ID: v}
		if w := m.Weight(v); w != model.DefaultNodeWeight {
			n.Weight = Weight(w)
		}
		out.Nodes = append(out.Nodes, n)
	}

	slices.SortStableFunc(edges, compareEdges)
	for _, e := range edges {
		if !directed && e.Start > e.End {
			continue
		}
		ej := Edge{From: e.Start, To: e.End}
		if e.Weight != model.DefaultEdgeWeight {
			ej.Weight = Weight(e.Weight)
		}
		out.Edges = append(out.Edges, ej)
	}
	return out
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// symmetric reports whether edges can be folded into undirected links: every
// non-loop edge pairs up with a reverse edge of the same weight.
func symmetric(edges []model.Edge[string]) bool {
	type key struct {
		a, b string
		w    int64
	}
	count := make(map[key]int)
	for _, e := range edges {
		if e.Start == e.End {
			return false
		}
		count[key{e.Start, e.End, e.Weight}]++
	}
	for k, c := range count {
		if count[key{k.b, k.a, k.w}] != c {
			return false
		}
	}
	return true
}

func compareEdges(a, b model.Edge[string]) int {
	if a.Start != b.Start {
		if a.Start < b.Start {
			return -1
		}
		return 1
	}
	if a.End != b.End {
		if a.End < b.End {
			return -1
		}
		return 1
	}
	return 0
}
