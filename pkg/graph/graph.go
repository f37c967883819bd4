package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/model"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a model to JSON bytes.
// Nodes are sorted by ID for deterministic output.
func MarshalGraph(m *model.Model[string]) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(FromModel(m), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a model to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(m *model.Model[string], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(FromModel(m), f)
}

// WriteGraph writes a model as JSON to an io.Writer.
func WriteGraph(m *model.Model[string], w io.Writer) error {
	return writeGraphTo(FromModel(m), w)
}

// ReadGraphFile reads a JSON file and returns the decoded model.
func ReadGraphFile(path string) (*model.Model[string], error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader into a model.
func ReadGraph(r io.Reader) (*model.Model[string], error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*model.Model[string], error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	return ToModel(data)
}
