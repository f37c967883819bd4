package disjoint

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/linepart/pkg/errors"
)

func mustFind[N cmp.Ordered](t *testing.T, s *Set[N], n N) N {
	t.Helper()
	root, err := s.Find(n)
	if err != nil {
		t.Fatalf("Find(%v): %v", n, err)
	}
	return root
}

func TestFiveSingletons(t *testing.T) {
	s := New("a", "b", "c", "d", "e")

	if !s.Union("a", "b") {
		t.Fatal("Union(a, b) = false, want true")
	}
	if !s.Union("c", "d") {
		t.Fatal("Union(c, d) = false, want true")
	}
	ab := mustFind(t, s, "a")
	cd := mustFind(t, s, "c")
	if !s.Union(ab, cd) {
		t.Fatal("Union of pair roots = false, want true")
	}

	if got := s.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	big := mustFind(t, s, "d")
	if got := s.Size(big); got != 4 {
		t.Errorf("Size(big) = %d, want 4", got)
	}
	members := s.Members(big)
	slices.Sort(members)
	if !slices.Equal(members, []string{"a", "b", "c", "d"}) {
		t.Errorf("Members(big) = %v, want [a b c d]", members)
	}
	if root := mustFind(t, s, "e"); root != "e" || s.Size("e") != 1 {
		t.Errorf("e should remain a singleton, got root %v size %d", root, s.Size(root))
	}
	if err := s.Validate(); err != nil {
		t.Error(err)
	}
}

func TestFindUnknown(t *testing.T) {
	s := New(1, 2)
	_, err := s.Find(3)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Find(3) error = %v, want NOT_FOUND", err)
	}
}

func TestUnionNoOps(t *testing.T) {
	tests := []struct {
		name string
		a, b int
	}{
		{"same root", 1, 1},
		{"absorbed root", 2, 3},
		{"unknown id", 1, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(1, 2, 3)
			s.Union(1, 2) // 1 survives the tie, 2 is no longer a root
			before := s.Partitions()
			if s.Union(tt.a, tt.b) {
				t.Errorf("Union(%d, %d) = true, want false", tt.a, tt.b)
			}
			if got := s.Len(); got != len(before) {
				t.Errorf("Len() = %d, want %d", got, len(before))
			}
		})
	}
}

func TestUnionKeepsLargerRoot(t *testing.T) {
	s := New(1, 2, 3, 4)
	s.Union(3, 4) // 3 keeps
	if !s.Union(1, 3) {
		t.Fatal("Union(1, 3) = false")
	}
	if !s.IsRoot(3) || s.IsRoot(1) {
		t.Errorf("larger root should survive: roots = %v", s.Roots())
	}
	if got := mustFind(t, s, 1); got != 3 {
		t.Errorf("Find(1) = %d, want 3", got)
	}
}

func TestUnionTieBreak(t *testing.T) {
	a := New("x", "y")
	a.Union("y", "x")
	b := New("x", "y")
	b.Union("x", "y")
	if !slices.Equal(a.Roots(), []string{"x"}) || !slices.Equal(b.Roots(), []string{"x"}) {
		t.Errorf("tie should keep the lower id: %v %v", a.Roots(), b.Roots())
	}
}

func TestRandomUnionsKeepInvariant(t *testing.T) {
	const n = 200
	nodes := make([]int, n)
	for i := range nodes {
		nodes[i] = i
	}
	s := New(nodes...)
	rng := rand.New(rand.NewPCG(7, 7^0xdeadbeef))

	for step := 0; step < 500; step++ {
		x, y := rng.IntN(n), rng.IntN(n)
		rx := mustFind(t, s, x)
		ry := mustFind(t, s, y)
		merged := s.Union(rx, ry)
		if merged == (rx == ry) {
			t.Fatalf("step %d: Union(%d, %d) = %v", step, rx, ry, merged)
		}
		if err := s.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		root := mustFind(t, s, x)
		if s.Size(root) != len(s.Members(root)) {
			t.Fatalf("step %d: size mismatch at %d", step, root)
		}
	}

	total := 0
	for _, ms := range s.Partitions() {
		total += len(ms)
	}
	if total != n {
		t.Errorf("members total = %d, want %d", total, n)
	}
}
