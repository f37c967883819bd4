package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/matzehuels/linepart/pkg/graph"
)

// WriteJSON encodes v as indented JSON and writes it to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes v as indented JSON to a file at path.
func ExportJSON(path string, v any) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(w, v) })
}

// WriteResult encodes a partitioning result as indented JSON and writes it
// to w. The output can be read back with graph.UnmarshalPartitioning.
func WriteResult(p graph.Partitioning, w io.Writer) error {
	return WriteJSON(w, p)
}

// ExportResult writes a partitioning result to a JSON file at path.
func ExportResult(p graph.Partitioning, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteResult(p, w) })
}

// WriteAssignmentCSV writes one "node,partition" row per node, in line
// order, after a header row. Partition indices are 1-based.
func WriteAssignmentCSV(p graph.Partitioning, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node", "partition"}); err != nil {
		return err
	}

	nodes := p.Line
	if len(nodes) == 0 {
		for n := range p.Assignment {
			nodes = append(nodes, n)
		}
		slices.Sort(nodes)
	}
	for _, n := range nodes {
		part, ok := p.Assignment[n]
		if !ok {
			return fmt.Errorf("node %s has no partition", n)
		}
		if err := cw.Write([]string{n, strconv.Itoa(part)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportAssignmentCSV writes the node assignment to a CSV file at path.
func ExportAssignmentCSV(p graph.Partitioning, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteAssignmentCSV(p, w) })
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
