package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"empty", nil, nil, 0},
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"single", []float64{1, 2, 3}, []float64{1, 2.5, 3}, 0.5},
		{"largest wins", []float64{0, -4, 1}, []float64{1, 0, 1}, 4},
	}

	for _, tc := range tests {
		d, err := MaxAbsDiff(tc.a, tc.b)
		if err != nil {
			t.Fatalf("%s: MaxAbsDiff error: %v", tc.name, err)
		}
		if math.Abs(d-tc.want) > 1e-15 {
			t.Fatalf("%s: MaxAbsDiff = %v, want %v", tc.name, d, tc.want)
		}
	}

	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestRequireHelpersPass(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2}, []float64{1 + 1e-12, 2}, 1e-9)
	RequireFinite(t, SyntheticRoomIR(1, 8000, 0.2, 10, 400))
}
