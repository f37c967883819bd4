package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failed stages and
// 5xx responses are logged as warnings.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l}
}

// Register installs h for all four event categories.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetAlgorithmHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnStageStart(_ context.Context, stage string, nodeCount int) {
	h.Logger.Debug("stage started", "stage", stage, "nodes", nodeCount)
}

func (h *LogHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("stage failed", "stage", stage, "took", d.Round(time.Microsecond), "err", err)
		return
	}
	h.Logger.Debug("stage done", "stage", stage, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnCoarsenRound(_ context.Context, round, clusters, edges int, d time.Duration) {
	h.Logger.Debug("coarsen round", "round", round, "clusters", clusters, "edges", edges, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnSwapPass(_ context.Context, pass, swaps int, maxCut int64) {
	h.Logger.Debug("swap pass", "pass", pass, "swaps", swaps, "max", maxCut)
}

func (h *LogHooks) OnDPLevel(_ context.Context, q int, d time.Duration) {
	h.Logger.Debug("dp level", "q", q, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "stage", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "stage", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "stage", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	if status >= 500 {
		h.Logger.Warn("response", "method", method, "path", path, "status", status, "took", d)
		return
	}
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}

var (
	_ PipelineHooks  = (*LogHooks)(nil)
	_ AlgorithmHooks = (*LogHooks)(nil)
	_ CacheHooks     = (*LogHooks)(nil)
	_ HTTPHooks      = (*LogHooks)(nil)
)
