// Package embed flattens clusters into a single ordered sequence, the line that
// the balancers partition.
package embed

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/linepart/pkg/coarsen"
)

// Order selects how clusters are arranged along the line.
type Order int

const (
	// OrderRootID places clusters by ascending root id.
	OrderRootID Order = iota
	// OrderSizeDesc places larger clusters first; equal sizes fall back to
	// ascending root id.
	OrderSizeDesc
)

// String returns the order name used in config files and flags.
func (o Order) String() string {
	if o == OrderSizeDesc {
		return "size"
	}
	return "root"
}

// ParseOrder converts a config or flag value into an Order.
func ParseOrder(s string) (Order, bool) {
	switch s {
	case "", "root":
		return OrderRootID, true
	case "size":
		return OrderSizeDesc, true
	}
	return OrderRootID, false
}

// Linear concatenates the member lists of clusters into one line. Members keep
// their order within a cluster; clusters are arranged by order. The result is
// the same for the same input on every call.
func Linear[N cmp.Ordered](clusters map[N][]N, order Order) []N {
	roots := slices.Sorted(maps.Keys(clusters))
	if order == OrderSizeDesc {
		slices.SortStableFunc(roots, func(a, b N) int {
			return cmp.Compare(len(clusters[b]), len(clusters[a]))
		})
	}

	n := 0
	for _, ms := range clusters {
		n += len(ms)
	}
	line := make([]N, 0, n)
	for _, r := range roots {
		line = append(line, clusters[r]...)
	}
	return line
}

// FromResult embeds the clusters of a coarsening run.
func FromResult[N cmp.Ordered](res *coarsen.Result[N], order Order) []N {
	return Linear(res.Clusters, order)
}
