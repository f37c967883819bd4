package embed

import (
	"slices"
	"testing"
)

func TestLinear(t *testing.T) {
	clusters := map[int][]int{
		7: {7, 1},
		2: {2, 9, 4},
		5: {5},
	}
	tests := []struct {
		name  string
		order Order
		want  []int
	}{
		{"root id", OrderRootID, []int{2, 9, 4, 5, 7, 1}},
		{"size", OrderSizeDesc, []int{2, 9, 4, 7, 1, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				if got := Linear(clusters, tt.order); !slices.Equal(got, tt.want) {
					t.Fatalf("Linear() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLinearSizeTieBreak(t *testing.T) {
	clusters := map[string][]string{
		"b": {"b", "x"},
		"a": {"a", "y"},
		"c": {"c"},
	}
	want := []string{"a", "y", "b", "x", "c"}
	if got := Linear(clusters, OrderSizeDesc); !slices.Equal(got, want) {
		t.Errorf("Linear() = %v, want %v", got, want)
	}
}

func TestLinearEmpty(t *testing.T) {
	if got := Linear(map[int][]int{}, OrderRootID); len(got) != 0 {
		t.Errorf("Linear(empty) = %v, want empty", got)
	}
}

func TestParseOrder(t *testing.T) {
	if o, ok := ParseOrder("size"); !ok || o != OrderSizeDesc {
		t.Errorf("ParseOrder(size) = %v, %v", o, ok)
	}
	if o, ok := ParseOrder(""); !ok || o != OrderRootID {
		t.Errorf("ParseOrder(\"\") = %v, %v", o, ok)
	}
	if _, ok := ParseOrder("random"); ok {
		t.Error("ParseOrder(random) should fail")
	}
}
