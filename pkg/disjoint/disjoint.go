// Package disjoint provides a union-find set that tracks the member list of
// every root, not just its size.
//
// Every inserted node maps directly to its current root, so [Set.Find] is a
// single map lookup. [Set.Union] relabels the members of the smaller set,
// which bounds the total relabeling work over any sequence of unions to
// O(n log n).
//
// Union is deliberately forgiving: calling it with ids that are no longer
// roots, or with the same root twice, does nothing and reports false. The
// coarsener relies on this when several merges in one round race to absorb the
// same cluster.
package disjoint

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/linepart/pkg/errors"
)

// Set is a disjoint-set over node ids of type N.
//
// The zero value is not usable - use [New]. Set is not safe for concurrent use.
type Set[N cmp.Ordered] struct {
	parent  map[N]N   // node -> current root
	size    map[N]int // root -> member count
	members map[N][]N // root -> members in merge order
}

// New creates a set with every node in its own singleton cluster.
func New[N cmp.Ordered](nodes ...N) *Set[N] {
	s := &Set[N]{
		parent:  make(map[N]N, len(nodes)),
		size:    make(map[N]int, len(nodes)),
		members: make(map[N][]N, len(nodes)),
	}
	for _, n := range nodes {
		s.Add(n)
	}
	return s
}

// Add inserts n as a singleton. Adding a node that is already present is a no-op.
func (s *Set[N]) Add(n N) {
	if _, ok := s.parent[n]; ok {
		return
	}
	s.parent[n] = n
	s.size[n] = 1
	s.members[n] = []N{n}
}

// Find returns the root of the cluster containing n. It fails with a NOT_FOUND
// error when n was never inserted.
func (s *Set[N]) Find(n N) (N, error) {
	root, ok := s.parent[n]
	if !ok {
		return root, errors.New(errors.ErrCodeNotFound, "node %v is not in the disjoint set", n)
	}
	return root, nil
}

// IsRoot reports whether n is currently a live root.
func (s *Set[N]) IsRoot(n N) bool {
	_, ok := s.members[n]
	return ok
}

// Union merges the clusters rooted at a and b and reports whether a merge
// happened.
//
// Both arguments must be live roots; otherwise, or when a == b, Union is a
// no-op. The larger cluster's root survives. On equal sizes the root that
// sorts first survives.
func (s *Set[N]) Union(a, b N) bool {
	if a == b || !s.IsRoot(a) || !s.IsRoot(b) {
		return false
	}

	keep, drop := a, b
	switch {
	case s.size[a] < s.size[b]:
		keep, drop = b, a
	case s.size[a] == s.size[b] && cmp.Less(b, a):
		keep, drop = b, a
	}

	for _, m := range s.members[drop] {
		s.parent[m] = keep
	}
	s.members[keep] = append(s.members[keep], s.members[drop]...)
	s.size[keep] += s.size[drop]
	delete(s.members, drop)
	delete(s.size, drop)
	return true
}

// Roots returns the live roots in ascending order.
func (s *Set[N]) Roots() []N {
	return slices.Sorted(maps.Keys(s.members))
}

// Len returns the number of clusters.
func (s *Set[N]) Len() int { return len(s.members) }

// Size returns the member count of root, or zero if root is not live.
func (s *Set[N]) Size(root N) int { return s.size[root] }

// Members returns a copy of root's member list, or nil if root is not live.
func (s *Set[N]) Members(root N) []N {
	return slices.Clone(s.members[root])
}

// Partitions returns a copy of every cluster keyed by root.
func (s *Set[N]) Partitions() map[N][]N {
	out := make(map[N][]N, len(s.members))
	for root, m := range s.members {
		out[root] = slices.Clone(m)
	}
	return out
}

// Validate checks the structural invariants: every root's size matches its
// member list, every node is listed exactly once, and every node points at the
// root that lists it.
func (s *Set[N]) Validate() error {
	seen := make(map[N]N, len(s.parent))
	for root, ms := range s.members {
		if s.size[root] != len(ms) {
			return fmt.Errorf("root %v: size %d, %d members", root, s.size[root], len(ms))
		}
		for _, m := range ms {
			if prev, dup := seen[m]; dup {
				return fmt.Errorf("node %v listed under %v and %v", m, prev, root)
			}
			seen[m] = root
			if s.parent[m] != root {
				return fmt.Errorf("node %v points at %v, listed under %v", m, s.parent[m], root)
			}
		}
	}
	if len(seen) != len(s.parent) {
		return fmt.Errorf("%d nodes inserted, %d listed", len(s.parent), len(seen))
	}
	if len(s.size) != len(s.members) {
		return fmt.Errorf("%d sizes for %d roots", len(s.size), len(s.members))
	}
	return nil
}
