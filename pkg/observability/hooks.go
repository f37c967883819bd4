// Package observability lets callers watch the pipeline without the algorithm
// packages depending on a metrics or tracing library.
//
// Four hook interfaces cover pipeline stages, algorithm progress (coarsening
// rounds, swap passes, DP levels), cache traffic and HTTP requests. Each has a
// no-op default held in a global registry. Hooks are installed by main, never
// by libraries:
//
//	observability.NewLogHooks(logger).Register()
//
// and emitted from the code being observed:
//
//	observability.Pipeline().OnStageStart(ctx, "coarsen", m.VertexCount())
//	res, err := coarsen.Coarsen(ctx, m, opts)
//	observability.Pipeline().OnStageComplete(ctx, "coarsen", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the partitioning pipeline.
type PipelineHooks interface {
	// OnStageStart fires before a stage (transform, coarsen, embed, swap, dp) runs.
	OnStageStart(ctx context.Context, stage string, nodeCount int)

	// OnStageComplete fires after a stage finishes, successfully or not.
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)
}

// =============================================================================
// Algorithm Hooks
// =============================================================================

// AlgorithmHooks receives progress events from the long-running algorithms.
type AlgorithmHooks interface {
	// OnCoarsenRound fires at the end of every coarsening round.
	OnCoarsenRound(ctx context.Context, round, clusters, edges int, duration time.Duration)

	// OnSwapPass fires at the end of every RankSwap pass.
	OnSwapPass(ctx context.Context, pass, swaps int, maxCut int64)

	// OnDPLevel fires after the DP has filled every range for partition count q.
	OnDPLevel(ctx context.Context, q int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, int)                        {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, time.Duration, error) {}

// NoopAlgorithmHooks is a no-op implementation of AlgorithmHooks.
type NoopAlgorithmHooks struct{}

func (NoopAlgorithmHooks) OnCoarsenRound(context.Context, int, int, int, time.Duration) {}
func (NoopAlgorithmHooks) OnSwapPass(context.Context, int, int, int64)                  {}
func (NoopAlgorithmHooks) OnDPLevel(context.Context, int, time.Duration)                {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                          {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks  PipelineHooks  = NoopPipelineHooks{}
	algorithmHooks AlgorithmHooks = NoopAlgorithmHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetPipelineHooks replaces the pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetAlgorithmHooks registers custom algorithm progress hooks.
func SetAlgorithmHooks(h AlgorithmHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		algorithmHooks = h
	}
}

// SetCacheHooks replaces the cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Algorithm returns the registered algorithm hooks.
func Algorithm() AlgorithmHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return algorithmHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	algorithmHooks = NoopAlgorithmHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
