package balance

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/linepart/pkg/errors"
	"github.com/matzehuels/linepart/pkg/model"
)

func weightsOf(ws map[int]int64) func(int) int64 {
	return func(v int) int64 { return ws[v] }
}

func TestPartitionFourNodes(t *testing.T) {
	line := []int{0, 1, 2, 3}
	ws := map[int]int64{0: 1, 1: 2, 2: 3, 3: 4}

	res, err := Partition(context.Background(), line, weightsOf(ws), nil, DPOptions{K: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Optimum != 6 {
		t.Errorf("Optimum = %d, want 6", res.Optimum)
	}
	if !slices.Equal(res.Cuts, []int{2}) {
		t.Errorf("Cuts = %v, want [2]", res.Cuts)
	}
	if !slices.Equal(res.Costs, []int64{6, 4}) {
		t.Errorf("Costs = %v, want [6 4]", res.Costs)
	}
	wantRanges := []Range{{0, 2}, {3, 3}}
	if !slices.Equal(res.Ranges, wantRanges) {
		t.Errorf("Ranges = %v, want %v", res.Ranges, wantRanges)
	}
	if res.Assignment[0] != 1 || res.Assignment[3] != 2 {
		t.Errorf("Assignment = %v", res.Assignment)
	}
	if res.Stats.Max != 6 || res.Stats.Mean != 5 {
		t.Errorf("Stats = %+v, want max 6 mean 5", res.Stats)
	}
}

func TestPartitionEdgeCosts(t *testing.T) {
	// a-b heavy link, c-d heavy link, b-c light link; unit node weights.
	line := []string{"a", "b", "c", "d"}
	m := model.New[string]()
	for _, v := range line {
		_ = m.AddVertex(v, 1)
	}
	_ = m.AddUndirected(model.Edge[string]{Start: "a", End: "b", Weight: 10})
	_ = m.AddUndirected(model.Edge[string]{Start: "b", End: "c", Weight: 1})
	_ = m.AddUndirected(model.Edge[string]{Start: "c", End: "d", Weight: 10})

	res, err := Partition(context.Background(), line, m.Weight, m.LinkWeights(), DPOptions{K: 2})
	if err != nil {
		t.Fatal(err)
	}
	// {a,b}: 2 nodes + 10 internal + 1 cut = 13, same for {c,d}.
	if res.Optimum != 13 || !slices.Equal(res.Cuts, []int{1}) {
		t.Errorf("Optimum = %d, Cuts = %v, want 13, [1]", res.Optimum, res.Cuts)
	}
}

func TestPartitionEdgeDirection(t *testing.T) {
	line := []string{"a", "b", "c", "d"}
	unit := func(string) int64 { return 1 }
	type pair = model.Pair[string]

	tests := []struct {
		name    string
		pairs   map[pair]int64
		optimum int64
		costs   []int64
	}{
		{"forward inside", map[pair]int64{{Start: "a", End: "b"}: 10}, 12, []int64{12, 2}},
		{"backward inside", map[pair]int64{{Start: "b", End: "a"}: 10}, 12, []int64{12, 2}},
		{"both directions add", map[pair]int64{{Start: "a", End: "b"}: 6, {Start: "b", End: "a"}: 4}, 12, []int64{12, 2}},
		{"backward across", map[pair]int64{{Start: "d", End: "a"}: 10}, 12, []int64{12, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Partition(context.Background(), line, unit, tt.pairs, DPOptions{K: 2})
			if err != nil {
				t.Fatal(err)
			}
			if res.Optimum != tt.optimum || !slices.Equal(res.Costs, tt.costs) {
				t.Errorf("Optimum = %d, Costs = %v, want %d, %v", res.Optimum, res.Costs, tt.optimum, tt.costs)
			}
			want, _, err := BruteForce(line, unit, tt.pairs, 2)
			if err != nil {
				t.Fatal(err)
			}
			if want != tt.optimum {
				t.Errorf("BruteForce = %d, want %d", want, tt.optimum)
			}
		})
	}
}

func TestPartitionMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42^0xdeadbeef))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.IntN(8)
		k := 1 + rng.IntN(min(3, n))
		line := rng.Perm(n)
		ws := make(map[int]int64, n)
		for v := 0; v < n; v++ {
			ws[v] = int64(rng.IntN(10))
		}
		pairs := make(map[model.Pair[int]]int64)
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				if a != b && rng.IntN(3) == 0 {
					pairs[model.Pair[int]{Start: a, End: b}] = int64(1 + rng.IntN(5))
				}
			}
		}

		res, err := Partition(context.Background(), line, weightsOf(ws), pairs, DPOptions{K: k, Workers: 1 + trial%4})
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		want, _, err := BruteForce(line, weightsOf(ws), pairs, k)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if res.Optimum != want {
			t.Fatalf("trial %d (n=%d k=%d): Optimum = %d, brute force = %d", trial, n, k, res.Optimum, want)
		}
		if len(res.Ranges) != k {
			t.Fatalf("trial %d: %d ranges, want %d", trial, len(res.Ranges), k)
		}
		if got := slices.Max(res.Costs); got != res.Optimum {
			t.Fatalf("trial %d: max cost %d != optimum %d", trial, got, res.Optimum)
		}
		covered := 0
		for _, r := range res.Ranges {
			if r.Len() < 1 {
				t.Fatalf("trial %d: empty range %v", trial, r)
			}
			covered += r.Len()
		}
		if covered != n {
			t.Fatalf("trial %d: ranges cover %d positions, want %d", trial, covered, n)
		}
	}
}

func TestPartitionLargerK(t *testing.T) {
	line := make([]int, 12)
	ws := make(map[int]int64)
	for i := range line {
		line[i] = i
		ws[i] = int64(i%4 + 1)
	}
	for _, k := range []int{4, 5, 7} {
		res, err := Partition(context.Background(), line, weightsOf(ws), nil, DPOptions{K: k})
		if err != nil {
			t.Fatal(err)
		}
		want, _, _ := BruteForce(line, weightsOf(ws), nil, k)
		if res.Optimum != want {
			t.Errorf("k=%d: Optimum = %d, want %d", k, res.Optimum, want)
		}
		if len(res.Cuts) != k-1 {
			t.Errorf("k=%d: %d cuts, want %d", k, len(res.Cuts), k-1)
		}
	}
}

func TestPartitionErrors(t *testing.T) {
	ctx := context.Background()
	w := func(int) int64 { return 1 }
	tests := []struct {
		name  string
		line  []int
		pairs map[model.Pair[int]]int64
		opts  DPOptions
		code  errors.Code
	}{
		{"empty", nil, nil, DPOptions{K: 1}, errors.ErrCodeEmptyInput},
		{"zero k", []int{1}, nil, DPOptions{K: 0}, errors.ErrCodeInvalidPartitionCount},
		{"k above n", []int{1, 2}, nil, DPOptions{K: 3}, errors.ErrCodeInvalidPartitionCount},
		{"duplicate node", []int{1, 1}, nil, DPOptions{K: 1}, errors.ErrCodeInvalidInput},
		{"too long", []int{1, 2, 3}, nil, DPOptions{K: 1, MaxVertices: 2}, errors.ErrCodeInvalidInput},
		{"edge off line", []int{1, 2}, map[model.Pair[int]]int64{{Start: 1, End: 9}: 1}, DPOptions{K: 1}, errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Partition(ctx, tt.line, w, tt.pairs, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPartitionCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Partition(ctx, []int{1, 2, 3}, func(int) int64 { return 1 }, nil, DPOptions{K: 2})
	if err == nil {
		t.Error("expected an error from a canceled context")
	}
}

func TestQList(t *testing.T) {
	tests := []struct {
		k    int
		want []int
	}{
		{0, nil},
		{1, []int{1}},
		{2, []int{1, 2}},
		{5, []int{1, 2, 3, 5}},
		{6, []int{1, 2, 3, 6}},
		{7, []int{1, 2, 3, 4, 7}},
		{8, []int{1, 2, 4, 8}},
	}
	for _, tt := range tests {
		if got := QList(tt.k); !slices.Equal(got, tt.want) {
			t.Errorf("QList(%d) = %v, want %v", tt.k, got, tt.want)
		}
	}
}

func TestTriIndex(t *testing.T) {
	const n = 5
	tr := newTri[int](n)
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			idx := tr.index(i, j)
			if idx < 0 || idx >= len(tr.data) || seen[idx] {
				t.Fatalf("index(%d, %d) = %d collides or is out of range", i, j, idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != len(tr.data) {
		t.Errorf("used %d of %d slots", len(seen), len(tr.data))
	}
}
