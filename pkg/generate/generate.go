// Package generate builds synthetic input graphs for experiments and tests.
//
// All generators are deterministic: the same arguments always yield the same
// model. Node IDs are zero-padded so that lexical order matches creation order.
package generate

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/model"
)

// Node weight range of [Random].
const (
	MinNodeWeight = 10
	MaxNodeWeight = 19
)

// Random returns an undirected graph on n vertices seeded by seed.
//
// The link between vertices i < j exists with probability 1/(j-i), so nearby
// vertices are likely neighbors and distant ones rarely are. Link weights are
// uniform in [1, j-i]; node weights are uniform in [MinNodeWeight,
// MaxNodeWeight].
func Random(n int, seed uint64) (*model.Model[string], error) {
	if n < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "vertex count must be positive, got %d", n)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ids := vertexIDs("v", n)

	m := model.New[string]()
	for _, id := range ids {
		_ = m.AddVertex(id, int64(MinNodeWeight+rng.IntN(MaxNodeWeight-MinNodeWeight+1)))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := j - i
			if rng.IntN(d) != 0 {
				continue
			}
			e := model.Edge[string]{Start: ids[i], End: ids[j], Weight: int64(1 + rng.IntN(d))}
			if err := m.AddUndirected(e); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// FatTree returns the k-ary fat-tree (folded Clos) topology: k pods of k/2
// edge and k/2 aggregation switches, plus (k/2)^2 core switches. With hosts
// set, every edge switch also serves k/2 hosts. All links and nodes have
// weight 1.
//
// Core switch c connects to aggregation switch c/(k/2) of every pod.
func FatTree(k int, hosts bool) (*model.Model[string], error) {
	if k < 2 || k%2 != 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "fat-tree arity must be even and at least 2, got %d", k)
	}
	half := k / 2

	m := model.New[string]()
	link := func(a, b string) {
		_ = m.AddUndirected(model.Edge[string]{Start: a, End: b, Weight: model.DefaultEdgeWeight})
	}

	cores := vertexIDs("core", half*half)
	for _, c := range cores {
		_ = m.AddVertex(c, model.DefaultNodeWeight)
	}
	for pod := 0; pod < k; pod++ {
		for a := 0; a < half; a++ {
			agg := fmt.Sprintf("agg-%s-%s", pad(pod, k), pad(a, half))
			_ = m.AddVertex(agg, model.DefaultNodeWeight)
			for c := a * half; c < (a+1)*half; c++ {
				link(cores[c], agg)
			}
		}
		for e := 0; e < half; e++ {
			edge := fmt.Sprintf("edge-%s-%s", pad(pod, k), pad(e, half))
			_ = m.AddVertex(edge, model.DefaultNodeWeight)
			for a := 0; a < half; a++ {
				link(edge, fmt.Sprintf("agg-%s-%s", pad(pod, k), pad(a, half)))
			}
			if !hosts {
				continue
			}
			for h := 0; h < half; h++ {
				host := fmt.Sprintf("host-%s-%s-%s", pad(pod, k), pad(e, half), pad(h, half))
				_ = m.AddVertex(host, model.DefaultNodeWeight)
				link(edge, host)
			}
		}
	}
	return m, nil
}

// FatTreeSize returns the switch and host counts of a k-ary fat-tree.
func FatTreeSize(k int) (switches, hosts int) {
	return 5 * k * k / 4, k * k * k / 4
}

func vertexIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = prefix + "-" + pad(i, n)
	}
	return ids
}

// pad formats i with as many digits as n-1 needs.
func pad(i, n int) string {
	width := len(strconv.Itoa(max(n-1, 0)))
	return fmt.Sprintf("%0*d", width, i)
}
