package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/model"
)

func TestToModel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantCode  errors.Code
		check     func(t *testing.T, m *model.Model[string])
	}{
		{
			name:      "Empty",
			input:     `{"nodes": [], "edges": []}`,
			wantNodes: 0,
			wantEdges: 0,
		},
		{
			name:      "UndirectedDoublesEdges",
			input:     `{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"from": "a", "to": "b", "weight": 4}]}`,
			wantNodes: 2,
			wantEdges: 2,
			check: func(t *testing.T, m *model.Model[string]) {
				pw := m.PairWeights()
				if pw[model.Pair[string]{Start: "b", End: "a"}] != 4 {
					t.Errorf("reverse weight = %d, want 4", pw[model.Pair[string]{Start: "b", End: "a"}])
				}
			},
		},
		{
			name:      "Directed",
			input:     `{"directed": true, "nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"from": "a", "to": "b"}]}`,
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name:      "DefaultWeights",
			input:     `{"directed": true, "nodes": [{"id": "a", "weight": 0}], "edges": [{"from": "a", "to": "z"}]}`,
			wantNodes: 2,
			wantEdges: 1,
			check: func(t *testing.T, m *model.Model[string]) {
				if m.Weight("a") != 0 {
					t.Errorf("explicit zero weight = %d, want 0", m.Weight("a"))
				}
				if m.Weight("z") != model.DefaultNodeWeight {
					t.Errorf("implicit node weight = %d, want %d", m.Weight("z"), model.DefaultNodeWeight)
				}
				if m.Edges()[0].Weight != model.DefaultEdgeWeight {
					t.Errorf("edge weight = %d, want %d", m.Edges()[0].Weight, model.DefaultEdgeWeight)
				}
			},
		},
		{
			name:     "DuplicateNode",
			input:    `{"nodes": [{"id": "a"}, {"id": "a"}]}`,
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "EmptyID",
			input:    `{"nodes": [{"id": ""}]}`,
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "NegativeNodeWeight",
			input:    `{"nodes": [{"id": "a", "weight": -1}]}`,
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "NegativeEdgeWeight",
			input:    `{"edges": [{"from": "a", "to": "b", "weight": -3}]}`,
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "Malformed",
			input:    `{"nodes": [`,
			wantCode: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadGraph(strings.NewReader(tt.input))
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadGraph: %v", err)
			}
			if got := m.VertexCount(); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := m.EdgeCount(); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, m)
			}
		})
	}
}

func TestFromModelDirection(t *testing.T) {
	tests := []struct {
		name         string
		edges        []model.Edge[string]
		wantDirected bool
		wantEdges    int
	}{
		{
			name:         "Symmetric",
			edges:        []model.Edge[string]{{Start: "a", End: "b", Weight: 1}, {Start: "b", End: "a", Weight: 1}},
			wantDirected: false,
			wantEdges:    1,
		},
		{
			name:         "OneWay",
			edges:        []model.Edge[string]{{Start: "a", End: "b", Weight: 1}},
			wantDirected: true,
			wantEdges:    1,
		},
		{
			name:         "AsymmetricWeights",
			edges:        []model.Edge[string]{{Start: "a", End: "b", Weight: 1}, {Start: "b", End: "a", Weight: 2}},
			wantDirected: true,
			wantEdges:    2,
		},
		{
			name:         "SelfLoop",
			edges:        []model.Edge[string]{{Start: "a", End: "a", Weight: 1}},
			wantDirected: true,
			wantEdges:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := model.FromEdges(tt.edges)
			if err != nil {
				t.Fatal(err)
			}
			g := FromModel(m)
			if g.Directed != tt.wantDirected {
				t.Errorf("Directed = %v, want %v", g.Directed, tt.wantDirected)
			}
			if len(g.Edges) != tt.wantEdges {
				t.Errorf("edges = %d, want %d", len(g.Edges), tt.wantEdges)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	m := model.New[string]()
	_ = m.AddVertex("h1", 5)
	_ = m.AddVertex("h2", 1)
	_ = m.AddUndirected(model.Edge[string]{Start: "h1", End: "sw", Weight: 3})
	_ = m.AddUndirected(model.Edge[string]{Start: "h2", End: "sw", Weight: 1})

	data, err := MarshalGraph(m)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if back.VertexCount() != m.VertexCount() || back.EdgeCount() != m.EdgeCount() {
		t.Errorf("round trip: %d/%d vertices, %d/%d edges",
			back.VertexCount(), m.VertexCount(), back.EdgeCount(), m.EdgeCount())
	}
	for _, v := range m.Vertices() {
		if back.Weight(v) != m.Weight(v) {
			t.Errorf("weight(%s) = %d, want %d", v, back.Weight(v), m.Weight(v))
		}
	}
	want, got := m.PairWeights(), back.PairWeights()
	for p, w := range want {
		if got[p] != w {
			t.Errorf("pair %v weight = %d, want %d", p, got[p], w)
		}
	}
}

func TestGraphFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.json")

	m, _ := model.FromEdges([]model.Edge[string]{{Start: "x", End: "y", Weight: 2}})
	if err := WriteGraphFile(m, path); err != nil {
		t.Fatal(err)
	}
	back, err := ReadGraphFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.EdgeCount() != 1 {
		t.Errorf("edges = %d, want 1", back.EdgeCount())
	}

	_, err = ReadGraphFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestUnmarshalGraph(t *testing.T) {
	g, err := UnmarshalGraph([]byte(`{"directed": true, "nodes": [{"id": "a", "label": "Alpha"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if !g.Directed || len(g.Nodes) != 1 {
		t.Fatalf("UnmarshalGraph = %+v", g)
	}
	if got := g.Nodes[0].DisplayLabel(); got != "Alpha" {
		t.Errorf("DisplayLabel = %q, want Alpha", got)
	}
	if _, err := UnmarshalGraph([]byte("nope")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestPartitioningRoundTrip(t *testing.T) {
	p := Partitioning{
		Line: []string{"a", "b", "c"},
		Cuts: []int{1},
		Partitions: []Partition{
			{Index: 1, Start: 0, End: 1, Nodes: []string{"a", "b"}, Cost: 2},
			{Index: 2, Start: 2, End: 2, Nodes: []string{"c"}, Cost: 1},
		},
		Optimum:    2,
		Assignment: map[string]int{"a": 1, "b": 1, "c": 2},
	}

	path := filepath.Join(t.TempDir(), "result.json")
	if err := WritePartitioningFile(p, path); err != nil {
		t.Fatal(err)
	}
	back, err := ReadPartitioningFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.PartitionOf("c") != 2 || back.PartitionOf("zz") != 0 {
		t.Errorf("PartitionOf: c=%d zz=%d", back.PartitionOf("c"), back.PartitionOf("zz"))
	}

	var raw map[string]any
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["swap"]; ok {
		t.Error("swap should be omitted when absent")
	}
}

func TestPartitioningValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Partitioning
	}{
		{"CutMismatch", Partitioning{Cuts: []int{0, 1}, Partitions: []Partition{{Index: 1}}}},
		{"BadIndex", Partitioning{Partitions: []Partition{{Index: 3}}}},
		{"Coverage", Partitioning{Line: []string{"a"}, Partitions: []Partition{{Index: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Validate = %v, want INVALID_FORMAT", err)
			}
		})
	}
}
