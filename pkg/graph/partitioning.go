package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/linepart/pkg/balance"
	"github.com/matzehuels/linepart/pkg/coarsen"
	"github.com/matzehuels/linepart/pkg/errors"
)

// =============================================================================
// Partitioning - Pipeline Result Format
// =============================================================================

// Partitioning is the serialization format for a complete pipeline run:
// the clusters found by coarsening, the line they were laid out on, and the
// balanced split of that line.
//
// It is what the CLI writes with --output, what the HTTP API returns, and
// what the pipeline caches.
type Partitioning struct {
	RunID     string `json:"run_id,omitempty"`
	GraphHash string `json:"graph_hash,omitempty"`

	// Coarsening stage
	Clusters   []Cluster  `json:"clusters"`
	Coarsening Coarsening `json:"coarsening"`

	// Embedding and balancing
	Line []string `json:"line"`
	Swap *Swap    `json:"swap,omitempty"`

	// Final split
	Cuts       []int          `json:"cuts"`
	Partitions []Partition    `json:"partitions"`
	Optimum    int64          `json:"optimum"`
	Stats      balance.Stats  `json:"stats"`
	Assignment map[string]int `json:"assignment"`
}

// Cluster is one coarsened cluster: a root and its members in merge order.
type Cluster struct {
	Root    string   `json:"root"`
	Members []string `json:"members"`
}

// Coarsening summarizes the contraction rounds.
type Coarsening struct {
	Rounds    int                  `json:"rounds"`
	Converged bool                 `json:"converged"`
	History   []coarsen.RoundStats `json:"history,omitempty"`
}

// Swap summarizes the RankSwap stage. Absent when the stage was skipped.
type Swap struct {
	// Baseline is the heaviest even-split partition before swapping.
	Baseline  int64         `json:"baseline"`
	MaxCut    int64         `json:"max_cut"`
	Passes    int           `json:"passes"`
	Swaps     int           `json:"swaps"`
	Converged bool          `json:"converged"`
	Stats     balance.Stats `json:"stats"`
}

// Partition is one contiguous range of the line.
type Partition struct {
	// Index is 1-based, matching Assignment.
	Index int      `json:"index"`
	Start int      `json:"start"`
	End   int      `json:"end"`
	Nodes []string `json:"nodes"`
	Cost  int64    `json:"cost"`
}

// PartitionOf returns the 1-based partition of node, or 0 if unassigned.
func (p *Partitioning) PartitionOf(node string) int {
	return p.Assignment[node]
}

// Validate checks the structural consistency of a decoded result.
func (p *Partitioning) Validate() error {
	if len(p.Partitions) != len(p.Cuts)+1 {
		return errors.New(errors.ErrCodeInvalidFormat,
			"%d partitions do not match %d cuts", len(p.Partitions), len(p.Cuts))
	}
	covered := 0
	for i, part := range p.Partitions {
		if part.Index != i+1 {
			return errors.New(errors.ErrCodeInvalidFormat, "partition %d has index %d", i+1, part.Index)
		}
		covered += len(part.Nodes)
	}
	if covered != len(p.Line) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"partitions cover %d nodes, line has %d", covered, len(p.Line))
	}
	return nil
}

// =============================================================================
// Partitioning Serialization API
// =============================================================================

// MarshalPartitioning serializes a Partitioning to pretty-printed JSON bytes.
func MarshalPartitioning(p Partitioning) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// UnmarshalPartitioning deserializes and validates JSON bytes.
func UnmarshalPartitioning(data []byte) (Partitioning, error) {
	var p Partitioning
	if err := json.Unmarshal(data, &p); err != nil {
		return Partitioning{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal partitioning")
	}
	if err := p.Validate(); err != nil {
		return Partitioning{}, err
	}
	return p, nil
}

// WritePartitioningFile writes a Partitioning to a JSON file.
func WritePartitioningFile(p Partitioning, path string) error {
	data, err := MarshalPartitioning(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPartitioningFile reads a Partitioning from a JSON file.
func ReadPartitioningFile(path string) (Partitioning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Partitioning{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalPartitioning(data)
}
