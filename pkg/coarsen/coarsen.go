package coarsen

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/matzehuels/linepart/pkg/disjoint"
	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/model"
	"github.com/matzehuels/linepart/pkg/observability"
)

// RoundStats summarizes one contraction round.
type RoundStats struct {
	Round    int           `json:"round"`
	Clusters int           `json:"clusters"` // clusters alive after the round
	Edges    int           `json:"edges"`    // contracted edges after the round
	Merges   int           `json:"merges"`   // unions from closest-neighbor resolution
	Repairs  int           `json:"repairs"`  // unions from fragment repair
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a coarsening run.
type Result[N cmp.Ordered] struct {
	// Clusters maps each surviving root to its member list.
	Clusters map[N][]N
	// Roots lists the surviving roots in ascending order.
	Roots []N
	// Rounds is the number of rounds executed.
	Rounds int
	// Converged reports whether the cluster count reached the target. A run
	// that hits MaxRounds or stops making progress is not an error; it just
	// reports false here.
	Converged bool
	// History holds one entry per round.
	History []RoundStats
}

// ClusterCount returns the number of surviving clusters.
func (r *Result[N]) ClusterCount() int { return len(r.Roots) }

// state is the per-run mutable state. The per-round maps live on the stack of
// mergeRound and are discarded between rounds.
type state[N cmp.Ordered] struct {
	set   *disjoint.Set[N]
	edges []model.Edge[N]
	mode  Mode
}

// Coarsen contracts m round by round until at most opts.Target clusters remain.
//
// Every vertex of m starts as a singleton cluster, including vertices without
// edges; those can only be absorbed by neighbors and may keep the run from
// converging. The returned clusters always partition the vertex set exactly.
func Coarsen[N cmp.Ordered](ctx context.Context, m *model.Model[N], opts Options) (*Result[N], error) {
	opts.setDefaults()
	vertices := m.Vertices()
	if err := errors.ValidateClusterTarget(opts.Target, len(vertices)); err != nil {
		return nil, err
	}

	st := &state[N]{
		set:   disjoint.New(vertices...),
		edges: m.Edges(),
		mode:  opts.Mode,
	}
	// Drops input self-loops so no vertex becomes its own closest neighbor.
	if err := st.updateEdges(); err != nil {
		return nil, err
	}

	res := &Result[N]{}
	for st.set.Len() > opts.Target && res.Rounds < opts.MaxRounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Rounds++
		start := time.Now()

		merges, err := st.mergeRound()
		if err != nil {
			return nil, err
		}
		if err := st.updateEdges(); err != nil {
			return nil, err
		}

		repairs := 0
		if opts.FragmentRepair {
			if repairs, err = st.repairFragments(res.Rounds); err != nil {
				return nil, err
			}
			if err := st.updateEdges(); err != nil {
				return nil, err
			}
		}

		rs := RoundStats{
			Round:    res.Rounds,
			Clusters: st.set.Len(),
			Edges:    len(st.edges),
			Merges:   merges,
			Repairs:  repairs,
			Duration: time.Since(start),
		}
		res.History = append(res.History, rs)
		opts.Logger.Debug("coarsen round",
			"round", rs.Round,
			"clusters", rs.Clusters,
			"edges", rs.Edges,
			"merges", rs.Merges,
			"repairs", rs.Repairs)
		observability.Algorithm().OnCoarsenRound(ctx, rs.Round, rs.Clusters, rs.Edges, rs.Duration)

		if merges == 0 && repairs == 0 {
			opts.Logger.Debug("coarsening stalled", "round", rs.Round, "clusters", rs.Clusters)
			break
		}
	}

	res.Converged = st.set.Len() <= opts.Target
	res.Clusters = st.set.Partitions()
	res.Roots = st.set.Roots()
	return res, nil
}

// closestNeighbors picks one out-edge target per vertex. Ties keep the
// earliest edge in the current edge order.
func (s *state[N]) closestNeighbors() map[N]N {
	best := make(map[N]model.Edge[N])
	for _, e := range s.edges {
		cur, ok := best[e.Start]
		if !ok || s.better(e.Weight, cur.Weight) {
			best[e.Start] = e
		}
	}
	out := make(map[N]N, len(best))
	for v, e := range best {
		out[v] = e.End
	}
	return out
}

func (s *state[N]) better(w, than int64) bool {
	if s.mode == ModeStrongest {
		return w > than
	}
	return w < than
}

// mergeRound merges every vertex with its closest neighbor.
//
// A vertex whose closest neighbor points back at it forms a mutual pair and is
// merged directly. Otherwise the chain v -> closest(v) -> ... is followed until
// it reaches a mutual pair, an already merged vertex, a vertex with no out-edge,
// or a vertex already on the current path (a cycle longer than two). The path
// is then unwound back to front, merging each vertex with the cluster its
// neighbor ended up in.
func (s *state[N]) mergeRound() (int, error) {
	closest := s.closestNeighbors()
	merged := make(map[N]bool)
	onPath := make(map[N]bool)
	var path []N
	merges := 0

	for _, v := range s.set.Roots() {
		if merged[v] {
			continue
		}
		path = path[:0]
		for cur := v; !merged[cur]; {
			next, ok := closest[cur]
			if !ok {
				break
			}
			if back, ok := closest[next]; ok && back == cur {
				n, err := s.union(cur, next)
				if err != nil {
					return merges, err
				}
				merges += n
				merged[cur], merged[next] = true, true
				break
			}
			if onPath[cur] {
				break
			}
			onPath[cur] = true
			path = append(path, cur)
			cur = next
		}

		for i := len(path) - 1; i >= 0; i-- {
			p := path[i]
			delete(onPath, p)
			n, err := s.union(p, closest[p])
			if err != nil {
				return merges, err
			}
			merges += n
			merged[p] = true
		}
	}
	return merges, nil
}

// union merges the clusters currently containing a and b.
func (s *state[N]) union(a, b N) (int, error) {
	ra, err := s.set.Find(a)
	if err != nil {
		return 0, err
	}
	rb, err := s.set.Find(b)
	if err != nil {
		return 0, err
	}
	if s.set.Union(ra, rb) {
		return 1, nil
	}
	return 0, nil
}

// updateEdges rewrites every edge onto its endpoints' roots and drops the
// self-loops this creates. Parallel edges are kept.
func (s *state[N]) updateEdges() error {
	next := s.edges[:0:0]
	for _, e := range s.edges {
		rs, err := s.set.Find(e.Start)
		if err != nil {
			return errors.Wrap(errors.ErrCodeNotFound, err, "edge %v -> %v", e.Start, e.End)
		}
		re, err := s.set.Find(e.End)
		if err != nil {
			return errors.Wrap(errors.ErrCodeNotFound, err, "edge %v -> %v", e.Start, e.End)
		}
		if rs != re {
			next = append(next, model.Edge[N]{Start: rs, End: re, Weight: e.Weight})
		}
	}
	s.edges = next
	return nil
}

// repairFragments attaches every cluster smaller than 2^round to the target of
// its lightest out-edge that leads to a different cluster.
func (s *state[N]) repairFragments(round int) (int, error) {
	threshold := fragmentThreshold(round)
	out := model.GroupByStart(s.edges)
	repairs := 0

	for _, root := range s.set.Roots() {
		if !s.set.IsRoot(root) || s.set.Size(root) >= threshold {
			continue
		}
		candidates := slices.Clone(out[root])
		slices.SortStableFunc(candidates, func(a, b model.Edge[N]) int {
			return cmp.Compare(a.Weight, b.Weight)
		})
		for _, e := range candidates {
			target, err := s.set.Find(e.End)
			if err != nil {
				return repairs, err
			}
			if target == root {
				continue
			}
			if s.set.Union(root, target) {
				repairs++
			}
			break
		}
	}
	return repairs, nil
}

func fragmentThreshold(round int) int {
	if round >= 62 {
		return int(^uint(0) >> 1)
	}
	return 1 << round
}
