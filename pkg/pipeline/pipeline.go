// Package pipeline runs the complete coarsen → embed → balance → render
// pipeline of linepart.
//
// This package implements the pipeline used by the CLI and the HTTP server.
// By centralizing this logic, both entry points share defaults, validation
// and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Cluster: optional common-neighbor transform, affinity coarsening and
//     linear embedding of the clusters
//  2. Balance: optional RankSwap reordering, then the exact interval DP
//  3. Render: result artifacts (JSON, CSV, DOT, SVG, PNG, PDF)
//
// The first two stages are cached independently; the cluster stage is keyed
// by the graph hash and the balance stage by the line it received.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Defaults()
//	opts.Partitions = 4
//	result, err := runner.Execute(ctx, m, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Partitioning.Optimum)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linepart/pkg/balance"
	"github.com/matzehuels/linepart/pkg/cache"
	"github.com/matzehuels/linepart/pkg/coarsen"
	"github.com/matzehuels/linepart/pkg/embed"
	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/model"
	"github.com/matzehuels/linepart/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPartitions is the number of balanced partitions.
	DefaultPartitions = 2

	// DefaultSeed seeds the RankSwap interval pairing.
	DefaultSeed = uint64(1)

	// DefaultMaxRounds caps coarsening rounds.
	DefaultMaxRounds = coarsen.DefaultMaxRounds
)

// Odd partition count policies for RankSwap.
const (
	OddRotate = "rotate"
	OddReject = "reject"
)

// Format constants for output artifacts.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run. Field tags name the
// JSON keys of API requests and the TOML keys of config files.
//
// Boolean switches default to true in [Defaults]; start from it rather than
// the zero value.
type Options struct {
	// Cluster stage
	Partitions      int    `json:"partitions" toml:"partitions"`
	Clusters        int    `json:"clusters,omitempty" toml:"clusters"`
	CommonNeighbors bool   `json:"common_neighbors" toml:"common_neighbors"`
	Mode            string `json:"mode,omitempty" toml:"mode"`
	FragmentRepair  bool   `json:"fragment_repair" toml:"fragment_repair"`
	MaxRounds       int    `json:"max_rounds,omitempty" toml:"max_rounds"`
	Order           string `json:"order,omitempty" toml:"order"`

	// Balance stage
	RankSwap    bool   `json:"rank_swap" toml:"rank_swap"`
	Intervals   int    `json:"intervals,omitempty" toml:"intervals"`
	Seed        uint64 `json:"seed,omitempty" toml:"seed"`
	OddK        string `json:"odd_k,omitempty" toml:"odd_k"`
	Workers     int    `json:"workers,omitempty" toml:"workers"`
	MaxVertices int    `json:"max_vertices,omitempty" toml:"max_vertices"`

	// Render stage
	Formats  []string `json:"formats,omitempty" toml:"formats"`
	GroupBy  string   `json:"group_by,omitempty" toml:"group_by"`
	Detailed bool     `json:"detailed,omitempty" toml:"detailed"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	validated bool
}

// Defaults returns the options of the full reference pipeline: shared
// neighbor weights, strongest-affinity coarsening with fragment repair,
// RankSwap, then the DP.
func Defaults() Options {
	return Options{
		Partitions:      DefaultPartitions,
		CommonNeighbors: true,
		FragmentRepair:  true,
		RankSwap:        true,
		Seed:            DefaultSeed,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the input graph.
	Graph *model.Model[string]

	// Partitioning is the serializable result, also cached and returned by
	// the API.
	Partitioning graph.Partitioning

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	ClusterTime time.Duration
	BalanceTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ClusterHit bool
	BalanceHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid format: %q (must be one of: json, csv, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and fills zero values.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Partitions == 0 {
		o.Partitions = DefaultPartitions
	}
	if o.Partitions < 0 {
		return errors.New(errors.ErrCodeInvalidPartitionCount, "partitions must be positive, got %d", o.Partitions)
	}
	if o.Clusters == 0 {
		o.Clusters = o.Partitions
	}
	if o.Clusters < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "clusters must be positive, got %d", o.Clusters)
	}
	if o.Mode == "" {
		o.Mode = coarsen.ModeNearest.String()
		if o.CommonNeighbors {
			o.Mode = coarsen.ModeStrongest.String()
		}
	}
	if _, ok := coarsen.ParseMode(o.Mode); !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid mode: %q (must be nearest or strongest)", o.Mode)
	}
	if o.MaxRounds == 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	if _, ok := embed.ParseOrder(o.Order); !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid order: %q (must be root or size)", o.Order)
	}
	if o.Order == "" {
		o.Order = embed.OrderRootID.String()
	}
	if o.Intervals < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "intervals must not be negative, got %d", o.Intervals)
	}
	if o.OddK == "" {
		o.OddK = OddRotate
	}
	if o.OddK != OddRotate && o.OddK != OddReject {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid odd_k: %q (must be rotate or reject)", o.OddK)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if _, ok := render.ParseGroup(o.GroupBy); !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid group_by: %q (must be partitions or clusters)", o.GroupBy)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// CoarsenOptions returns the options of the coarsening call.
func (o *Options) CoarsenOptions() coarsen.Options {
	mode, _ := coarsen.ParseMode(o.Mode)
	return coarsen.Options{
		Target:         o.Clusters,
		MaxRounds:      o.MaxRounds,
		Mode:           mode,
		FragmentRepair: o.FragmentRepair,
		Logger:         o.Logger,
	}
}

// SwapOptions returns the options of the RankSwap call.
func (o *Options) SwapOptions() balance.SwapOptions {
	odd := balance.OddRotate
	if o.OddK == OddReject {
		odd = balance.OddReject
	}
	return balance.SwapOptions{
		K:         o.Partitions,
		Intervals: o.Intervals,
		Seed:      o.Seed,
		OddK:      odd,
		Logger:    o.Logger,
	}
}

// DPOptions returns the options of the interval DP call.
func (o *Options) DPOptions() balance.DPOptions {
	return balance.DPOptions{
		K:           o.Partitions,
		Workers:     o.Workers,
		MaxVertices: o.MaxVertices,
		Logger:      o.Logger,
	}
}

// CoarsenKeyOpts returns cache key options for the cluster stage.
func (o *Options) CoarsenKeyOpts() cache.CoarsenKeyOpts {
	return cache.CoarsenKeyOpts{
		Clusters:        o.Clusters,
		Mode:            o.Mode,
		MaxRounds:       o.MaxRounds,
		FragmentRepair:  o.FragmentRepair,
		CommonNeighbors: o.CommonNeighbors,
		Order:           o.Order,
	}
}

// PartitionKeyOpts returns cache key options for the balance stage. The DP
// worker count does not change the result and is left out.
func (o *Options) PartitionKeyOpts() cache.PartitionKeyOpts {
	return cache.PartitionKeyOpts{
		Partitions: o.Partitions,
		RankSwap:   o.RankSwap,
		Intervals:  o.Intervals,
		Seed:       o.Seed,
		OddK:       o.OddK,
	}
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}
