package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matzehuels/linepart/pkg/buildinfo"
	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/pipeline"
)

// PartitionRequest is the body of POST /v1/partition. Omitted options take
// the pipeline defaults.
type PartitionRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// PartitionResponse is the body of a successful POST /v1/partition.
type PartitionResponse struct {
	Result    graph.Partitioning `json:"result"`
	Artifacts map[string][]byte  `json:"artifacts,omitempty"`
	Cache     CacheStatus        `json:"cache"`
	Timings   Timings            `json:"timings_ms"`
}

// CacheStatus reports which stages were served from cache.
type CacheStatus struct {
	Cluster bool `json:"cluster"`
	Balance bool `json:"balance"`
}

// Timings reports stage durations in milliseconds.
type Timings struct {
	Cluster int64 `json:"cluster"`
	Balance int64 `json:"balance"`
	Render  int64 `json:"render"`
}

func (s *Server) handlePartition(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	req := PartitionRequest{Options: pipeline.Defaults()}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput), "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidFormat), "decode request: "+err.Error())
		return
	}

	m, err := graph.ToModel(req.Graph)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if n := m.VertexCount(); n > s.cfg.MaxVertices {
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidInput),
			fmt.Sprintf("graph has %d vertices; this server accepts at most %d", n, s.cfg.MaxVertices))
		return
	}

	opts := req.Options
	s.cfg.limit(&opts)
	opts.Logger = s.logger.With("request_id", RequestIDFrom(r.Context()))
	res, err := s.runner.Execute(r.Context(), m, opts)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	res.Partitioning.RunID = RequestIDFrom(r.Context())

	writeJSON(w, http.StatusOK, PartitionResponse{
		Result:    res.Partitioning,
		Artifacts: nonEmpty(res.Artifacts),
		Cache: CacheStatus{
			Cluster: res.CacheInfo.ClusterHit,
			Balance: res.CacheInfo.BalanceHit,
		},
		Timings: Timings{
			Cluster: millis(res.Stats.ClusterTime),
			Balance: millis(res.Stats.BalanceTime),
			Render:  millis(res.Stats.RenderTime),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func millis(d time.Duration) int64 { return d.Milliseconds() }

func nonEmpty(m map[string][]byte) map[string][]byte {
	if len(m) == 0 {
		return nil
	}
	return m
}
