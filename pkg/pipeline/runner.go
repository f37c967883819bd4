package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/linepart/pkg/balance"
	"github.com/matzehuels/linepart/pkg/cache"
	"github.com/matzehuels/linepart/pkg/coarsen"
	"github.com/matzehuels/linepart/pkg/embed"
	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/model"
	"github.com/matzehuels/linepart/pkg/observability"
	"github.com/matzehuels/linepart/pkg/transform"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching logic lives in one place.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ClusterStage is the cached outcome of transform, coarsen and embed.
type ClusterStage struct {
	Clusters   []graph.Cluster  `json:"clusters"`
	Coarsening graph.Coarsening `json:"coarsening"`
	Line       []string         `json:"line"`
}

// BalanceStage is the cached outcome of RankSwap and the interval DP.
type BalanceStage struct {
	Line       []string          `json:"line"`
	Swap       *graph.Swap       `json:"swap,omitempty"`
	Cuts       []int             `json:"cuts"`
	Partitions []graph.Partition `json:"partitions"`
	Optimum    int64             `json:"optimum"`
	Stats      balance.Stats     `json:"stats"`
	Assignment map[string]int    `json:"assignment"`
}

// Execute runs the complete cluster → balance → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, m *model.Model[string], opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if m == nil || m.VertexCount() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "graph has no nodes")
	}

	result := &Result{
		Graph:     m,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = m.VertexCount()
	result.Stats.EdgeCount = m.EdgeCount()

	graphHash, err := GraphHash(m)
	if err != nil {
		return nil, err
	}

	// Stage 1: Cluster
	clusterStart := time.Now()
	cs, clusterHit, err := r.ClusterWithCacheInfo(ctx, m, graphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	result.Stats.ClusterTime = time.Since(clusterStart)
	result.CacheInfo.ClusterHit = clusterHit

	r.Logger.Info("coarsened graph",
		"clusters", len(cs.Clusters),
		"rounds", cs.Coarsening.Rounds,
		"converged", cs.Coarsening.Converged,
		"cached", clusterHit,
		"duration", result.Stats.ClusterTime)

	// Stage 2: Balance
	balanceStart := time.Now()
	bs, balanceHit, err := r.BalanceWithCacheInfo(ctx, m, graphHash, cs.Line, opts)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	result.Stats.BalanceTime = time.Since(balanceStart)
	result.CacheInfo.BalanceHit = balanceHit

	r.Logger.Info("balanced partitions",
		"partitions", len(bs.Partitions),
		"optimum", bs.Optimum,
		"cv", bs.Stats.CV,
		"cached", balanceHit,
		"duration", result.Stats.BalanceTime)

	result.Partitioning = Assemble(graphHash, cs, bs)

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, err := Render(ctx, m, result.Partitioning, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// GraphHash returns the cache identity of m: a hash of its canonical JSON.
func GraphHash(m *model.Model[string]) (string, error) {
	data, err := graph.MarshalGraph(m)
	if err != nil {
		return "", fmt.Errorf("hash graph: %w", err)
	}
	return cache.Hash(data), nil
}

// Assemble combines both stage results into a serializable result with a
// fresh run id. A zero ClusterStage is allowed when only the balance stage
// ran.
func Assemble(graphHash string, cs ClusterStage, bs BalanceStage) graph.Partitioning {
	return graph.Partitioning{
		RunID:      uuid.NewString(),
		GraphHash:  graphHash,
		Clusters:   cs.Clusters,
		Coarsening: cs.Coarsening,
		Line:       bs.Line,
		Swap:       bs.Swap,
		Cuts:       bs.Cuts,
		Partitions: bs.Partitions,
		Optimum:    bs.Optimum,
		Stats:      bs.Stats,
		Assignment: bs.Assignment,
	}
}

// ClusterWithCacheInfo runs the cluster stage with caching and returns cache
// hit info.
func (r *Runner) ClusterWithCacheInfo(ctx context.Context, m *model.Model[string], graphHash string, opts Options) (ClusterStage, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return ClusterStage{}, false, err
	}

	key := r.Keyer.CoarsenKey(graphHash, opts.CoarsenKeyOpts())
	var cs ClusterStage
	if r.lookup(ctx, "coarsen", key, &cs, opts.Refresh) {
		return cs, true, nil
	}

	cs, err := Cluster(ctx, m, opts)
	if err != nil {
		return ClusterStage{}, false, err
	}
	r.store(ctx, "coarsen", key, cs, cache.TTLCoarsen)
	return cs, false, nil
}

// BalanceWithCacheInfo runs the balance stage on line with caching and
// returns cache hit info. The key covers the graph as well as the line, since
// edge weights enter the partition costs.
func (r *Runner) BalanceWithCacheInfo(ctx context.Context, m *model.Model[string], graphHash string, line []string, opts Options) (BalanceStage, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return BalanceStage{}, false, err
	}

	lineHash := cache.HashLines(append([]string{graphHash}, line...)...)
	key := r.Keyer.PartitionKey(lineHash, opts.PartitionKeyOpts())
	var bs BalanceStage
	if r.lookup(ctx, "partition", key, &bs, opts.Refresh) {
		return bs, true, nil
	}

	bs, err := Balance(ctx, m, line, opts)
	if err != nil {
		return BalanceStage{}, false, err
	}
	r.store(ctx, "partition", key, bs, cache.TTLPartition)
	return bs, false, nil
}

// Cluster runs the optional common-neighbor transform, coarsens the graph and
// lays the clusters out on a line. No cache is involved.
func Cluster(ctx context.Context, m *model.Model[string], opts Options) (ClusterStage, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return ClusterStage{}, err
	}

	work := m
	if opts.CommonNeighbors {
		err := stage(ctx, "transform", m.VertexCount(), func() error {
			var err error
			work, err = transform.CommonNeighborModel(m)
			return err
		})
		if err != nil {
			return ClusterStage{}, err
		}
		opts.Logger.Debug("common neighbor weights", "edges", work.EdgeCount())
	}

	var res *coarsen.Result[string]
	err := stage(ctx, "coarsen", work.VertexCount(), func() error {
		var err error
		res, err = coarsen.Coarsen(ctx, work, opts.CoarsenOptions())
		return err
	})
	if err != nil {
		return ClusterStage{}, err
	}
	if !res.Converged {
		opts.Logger.Warn("coarsening stopped above target",
			"clusters", res.ClusterCount(),
			"target", opts.Clusters,
			"rounds", res.Rounds)
	}

	order, _ := embed.ParseOrder(opts.Order)
	var line []string
	err = stage(ctx, "embed", work.VertexCount(), func() error {
		line = embed.FromResult(res, order)
		return nil
	})
	if err != nil {
		return ClusterStage{}, err
	}

	cs := ClusterStage{
		Clusters: make([]graph.Cluster, 0, res.ClusterCount()),
		Coarsening: graph.Coarsening{
			Rounds:    res.Rounds,
			Converged: res.Converged,
			History:   res.History,
		},
		Line: line,
	}
	for _, root := range res.Roots {
		cs.Clusters = append(cs.Clusters, graph.Cluster{Root: root, Members: res.Clusters[root]})
	}
	return cs, nil
}

// Balance runs the optional RankSwap reordering and then the interval DP on
// line. Partition costs use the edges of m, not the transformed weights.
func Balance(ctx context.Context, m *model.Model[string], line []string, opts Options) (BalanceStage, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return BalanceStage{}, err
	}

	var bs BalanceStage
	if opts.RankSwap {
		var sw *balance.SwapResult[string]
		err := stage(ctx, "swap", len(line), func() error {
			var err error
			sw, err = balance.RankSwap(ctx, line, m.Weight, opts.SwapOptions())
			return err
		})
		if err != nil {
			return BalanceStage{}, err
		}
		line = sw.Line
		bs.Swap = &graph.Swap{
			Baseline:  sw.Baseline,
			MaxCut:    sw.Stats.Max,
			Passes:    sw.Passes,
			Swaps:     sw.Swaps,
			Converged: sw.Converged,
			Stats:     sw.Stats,
		}
		opts.Logger.Debug("rank swap",
			"baseline", sw.Baseline,
			"max", sw.Stats.Max,
			"swaps", sw.Swaps,
			"passes", sw.Passes)
	}

	var dp *balance.DPResult[string]
	err := stage(ctx, "dp", len(line), func() error {
		var err error
		dp, err = balance.Partition(ctx, line, m.Weight, m.LinkWeights(), opts.DPOptions())
		return err
	})
	if err != nil {
		return BalanceStage{}, err
	}

	bs.Line = line
	bs.Cuts = dp.Cuts
	bs.Optimum = dp.Optimum
	bs.Stats = dp.Stats
	bs.Assignment = dp.Assignment
	bs.Partitions = make([]graph.Partition, len(dp.Ranges))
	for i, rg := range dp.Ranges {
		bs.Partitions[i] = graph.Partition{
			Index: i + 1,
			Start: rg.Start,
			End:   rg.End,
			Nodes: dp.Partitions[i],
			Cost:  dp.Costs[i],
		}
	}
	return bs, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads a cached stage into v. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string, v any, refresh bool) bool {
	if refresh {
		return false
	}
	err := cache.GetJSON(ctx, r.Cache, key, v)
	switch {
	case err == nil:
		observability.Cache().OnCacheHit(ctx, keyType)
		return true
	case !stderrors.Is(err, cache.ErrCacheMiss):
		r.Logger.Warn("cache read failed", "key", key, "error", err)
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return false
}

// store writes a stage result. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// stage reports fn to the pipeline hooks. A canceled context fails the stage
// without running fn.
func stage(ctx context.Context, name string, nodes int, fn func() error) error {
	observability.Pipeline().OnStageStart(ctx, name, nodes)
	start := time.Now()
	err := ctx.Err()
	if err == nil {
		err = fn()
	}
	observability.Pipeline().OnStageComplete(ctx, name, time.Since(start), err)
	return err
}
