package rank

import (
	"sort"
	"testing"
)

func TestMMR_OutputSize(t *testing.T) {
	query := []float32{1, 0}
	docs := [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}, {0.5, 0.5}}

	tests := []struct {
		name string
		k    int
		want int
	}{
		{"k smaller than pool", 2, 2},
		{"k equals pool", 4, 4},
		{"k larger than pool", 10, 4},
		{"k zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MMR(query, docs, tt.k, 0.6)
			if len(got) != tt.want {
				t.Errorf("expected %d indices, got %d", tt.want, len(got))
			}
		})
	}
}

func TestMMR_NoDuplicates(t *testing.T) {
	query := []float32{1, 0, 0}
	docs := [][]float32{
		{1, 0, 0}, {0.9, 0.1, 0}, {0.8, 0.2, 0},
		{0, 1, 0}, {0, 0, 1}, {0.5, 0.5, 0},
	}
	got := MMR(query, docs, 6, 0.5)
	seen := make(map[int]bool)
	for _, idx := range got {
		if seen[idx] {
			t.Fatalf("duplicate index %d in output %v", idx, got)
		}
		seen[idx] = true
	}
}

func TestMMR_PureRelevance(t *testing.T) {
	// lambda=1 must equal top-k by query similarity, in descending order.
	query := []float32{1, 0}
	docs := [][]float32{
		{0, 1},        // sim 0
		{1, 0},        // sim 1
		{0.5, 0.5},    // sim ~0.707
		{0.9, 0.1},    // sim ~0.994
		{-1, 0},       // sim -1
	}
	got := MMR(query, docs, 3, 1.0)
	want := []int{1, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMMR_DiversityPenalty(t *testing.T) {
	// Two near-identical docs and one distinct: with diversity weight the
	// distinct doc must be chosen second despite lower query similarity.
	query := []float32{1, 0}
	docs := [][]float32{
		{1, 0},
		{0.999, 0.001},
		{0.2, 0.8},
	}
	got := MMR(query, docs, 2, 0.3)
	if got[0] != 0 {
		t.Fatalf("first pick should be the most relevant doc, got %v", got)
	}
	if got[1] != 2 {
		t.Errorf("second pick should be the diverse doc, got %v", got)
	}
}

func TestMMR_TieBreaksByInputOrder(t *testing.T) {
	query := []float32{1, 0}
	docs := [][]float32{{1, 0}, {1, 0}, {1, 0}}
	got := MMR(query, docs, 1, 0.7)
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("tie should break toward first occurrence, got %v", got)
	}
}

func TestMMR_EmptyPool(t *testing.T) {
	if got := MMR([]float32{1}, nil, 5, 0.6); got != nil {
		t.Errorf("expected nil for empty pool, got %v", got)
	}
}

func TestMMR_LambdaClamped(t *testing.T) {
	query := []float32{1, 0}
	docs := [][]float32{{1, 0}, {0, 1}}
	for _, lambda := range []float64{-1, 2} {
		got := MMR(query, docs, 2, lambda)
		if len(got) != 2 {
			t.Errorf("lambda=%v: expected 2 indices, got %v", lambda, got)
		}
		sorted := append([]int(nil), got...)
		sort.Ints(sorted)
		if sorted[0] != 0 || sorted[1] != 1 {
			t.Errorf("lambda=%v: expected both docs selected, got %v", lambda, got)
		}
	}
}
