// Package io reads and writes the files around a pipeline run: the TOML
// configuration that feeds it and the result and assignment files it
// produces.
//
// # Configuration
//
// A config file sets pipeline options by their TOML names:
//
//	partitions       = 4
//	clusters         = 30
//	common_neighbors = true
//	fragment_repair  = true
//	max_rounds       = 5
//	rank_swap        = true
//	intervals        = 0
//	seed             = 1
//	workers          = 0
//
// Load it over a value pre-filled with defaults so that missing keys keep
// their default:
//
//	opts := pipeline.Defaults()
//	if err := io.LoadConfig("linepart.toml", &opts); err != nil {
//	    return err
//	}
//
// # Results
//
// [WriteResult] writes a graph.Partitioning as JSON. [WriteAssignmentCSV]
// writes the worker assignment, one node per row:
//
//	node,partition
//	h1,1
//	h2,1
//	sw1,2
//
// File variants ([ExportResult], [ExportAssignmentCSV]) create or truncate
// the target path.
package io
