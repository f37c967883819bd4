package balance

// cube is a flattened n*n*n table indexed by (i, j, k).
type cube struct {
	n    int
	data []int64
}

func newCube(n int) *cube {
	return &cube{n: n, data: make([]int64, n*n*n)}
}

func (c *cube) index(i, j, k int) int { return (i*c.n+j)*c.n + k }

func (c *cube) at(i, j, k int) int64 { return c.data[c.index(i, j, k)] }

func (c *cube) set(i, j, k int, v int64) { c.data[c.index(i, j, k)] = v }

// tri stores the upper triangle (i <= j) of an n*n table row by row.
type tri[T any] struct {
	n    int
	data []T
}

func newTri[T any](n int) *tri[T] {
	return &tri[T]{n: n, data: make([]T, n*(n+1)/2)}
}

// index maps (i, j) with i <= j to its slot: rows before i hold
// n + (n-1) + ... + (n-i+1) cells.
func (t *tri[T]) index(i, j int) int { return i*t.n - i*(i-1)/2 + (j - i) }

func (t *tri[T]) at(i, j int) T { return t.data[t.index(i, j)] }

func (t *tri[T]) set(i, j int, v T) { t.data[t.index(i, j)] = v }
