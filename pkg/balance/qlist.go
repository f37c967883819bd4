package balance

import (
	"maps"
	"slices"
)

// QList returns every partition count the interval DP needs for k, in
// ascending order: k itself plus, recursively, q/2 and q-q/2 for every q > 1
// in the set. Computing levels in this order guarantees both halves of a level
// are ready before the level itself.
func QList(k int) []int {
	if k < 1 {
		return nil
	}
	seen := map[int]bool{k: true}
	frontier := []int{k}
	for len(frontier) > 0 {
		q := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if q == 1 {
			continue
		}
		for _, half := range []int{q / 2, q - q/2} {
			if !seen[half] {
				seen[half] = true
				frontier = append(frontier, half)
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
