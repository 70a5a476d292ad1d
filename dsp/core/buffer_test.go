package core

import "testing"

func TestFixLength(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		n    int
		want []float64
	}{
		{name: "pad", in: []float64{1, 2}, n: 4, want: []float64{1, 2, 0, 0}},
		{name: "trim", in: []float64{1, 2, 3}, n: 2, want: []float64{1, 2}},
		{name: "same", in: []float64{1, 2}, n: 2, want: []float64{1, 2}},
		{name: "from empty", in: nil, n: 3, want: []float64{0, 0, 0}},
		{name: "zero length", in: []float64{1}, n: 0, want: []float64{}},
		{name: "negative length", in: []float64{1}, n: -2, want: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixLength(tt.in, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFixLengthReusesCapacity(t *testing.T) {
	backing := []float64{1, 2, 9, 9}
	got := FixLength(backing[:2], 4)

	if &got[0] != &backing[0] {
		t.Fatal("expected the backing array to be reused")
	}
	if got[2] != 0 || got[3] != 0 {
		t.Fatalf("stale capacity leaked: %v", got)
	}
}

func TestFixLengthGrowDoesNotAlias(t *testing.T) {
	in := []float64{1, 2}
	got := FixLength(in, 5)
	got[0] = 7

	if in[0] != 1 {
		t.Fatalf("input modified through grown slice: %v", in)
	}
}
