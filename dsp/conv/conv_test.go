package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-augment/internal/testutil"
)

func TestDirect(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected []float64
	}{
		{
			name:     "simple 3x3",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 1, 1},
			expected: []float64{1, 3, 6, 5, 3},
		},
		{
			name:     "impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{1},
			expected: []float64{1, 2, 3, 4, 5},
		},
		{
			name:     "delayed impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{0, 0, 1},
			expected: []float64{0, 0, 1, 2, 3, 4, 5},
		},
		{
			name:     "symmetric",
			a:        []float64{1, 2, 1},
			b:        []float64{1, 2, 1},
			expected: []float64{1, 4, 6, 4, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Direct(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.RequireSliceNearlyEqual(t, result, tt.expected, 1e-12)
		})
	}
}

func TestDirectErrors(t *testing.T) {
	_, err := Direct([]float64{}, []float64{1, 2})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}

	_, err = Direct([]float64{1, 2}, []float64{})
	if !errors.Is(err, ErrEmptyKernel) {
		t.Errorf("expected ErrEmptyKernel, got %v", err)
	}
}

func TestOverlapAddMatchesDirect(t *testing.T) {
	tests := []struct {
		name      string
		signalLen int
		kernelLen int
		blockSize int
	}{
		{name: "short kernel", signalLen: 1000, kernelLen: 3, blockSize: 0},
		{name: "kernel longer than block", signalLen: 2000, kernelLen: 300, blockSize: 64},
		{name: "signal shorter than block", signalLen: 50, kernelLen: 200, blockSize: 0},
		{name: "uneven last block", signalLen: 1001, kernelLen: 129, blockSize: 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := testutil.DeterministicNoise(7, 1, tt.signalLen)
			kernel := makeDecayKernel(tt.kernelLen)

			want, err := Direct(signal, kernel)
			if err != nil {
				t.Fatal(err)
			}

			oa, err := NewOverlapAdd(kernel, tt.blockSize)
			if err != nil {
				t.Fatal(err)
			}

			got, err := oa.Process(signal)
			if err != nil {
				t.Fatal(err)
			}

			testutil.RequireSliceNearlyEqual(t, got, want, 1e-9)
		})
	}
}

func TestOverlapAddSizes(t *testing.T) {
	oa, err := NewOverlapAdd(make([]float64, 300), 0)
	if err != nil {
		t.Fatal(err)
	}

	if oa.KernelLen() != 300 {
		t.Errorf("KernelLen() = %d, want 300", oa.KernelLen())
	}
	if oa.BlockSize() != 512 {
		t.Errorf("BlockSize() = %d, want 512", oa.BlockSize())
	}
	if oa.FFTSize() != 1024 {
		t.Errorf("FFTSize() = %d, want 1024", oa.FFTSize())
	}

	if _, err := NewOverlapAdd(nil, 0); !errors.Is(err, ErrEmptyKernel) {
		t.Errorf("expected ErrEmptyKernel, got %v", err)
	}
	if _, err := oa.Process(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestConvolveAutoSelection(t *testing.T) {
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = float64(i % 10)
	}

	for _, kernelLen := range []int{3, directThreshold, directThreshold + 1, 100} {
		kernel := makeDecayKernel(kernelLen)

		got, err := Convolve(signal, kernel)
		if err != nil {
			t.Fatalf("kernel %d: %v", kernelLen, err)
		}

		want, _ := Direct(signal, kernel)

		maxDiff, err := testutil.MaxAbsDiff(got, want)
		if err != nil {
			t.Fatalf("kernel %d: %v", kernelLen, err)
		}
		if maxDiff > 1e-8 {
			t.Errorf("kernel %d: max difference %v exceeds tolerance", kernelLen, maxDiff)
		}
	}
}

func TestConvolveCommutative(t *testing.T) {
	a := testutil.DeterministicNoise(1, 1, 90)
	b := testutil.DeterministicNoise(2, 1, 400)

	ab, err := Convolve(a, b)
	if err != nil {
		t.Fatal(err)
	}

	ba, err := Convolve(b, a)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, ab, ba, 1e-9)
}

func TestConvolveMode(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{1, 2, 3}

	full, _ := ConvolveMode(a, b, ModeFull)
	testutil.RequireSliceNearlyEqual(t, full, []float64{1, 4, 10, 16, 22, 22, 15}, 1e-12)

	same, _ := ConvolveMode(a, b, ModeSame)
	testutil.RequireSliceNearlyEqual(t, same, []float64{4, 10, 16, 22, 22}, 1e-12)

	valid, _ := ConvolveMode(a, b, ModeValid)
	testutil.RequireSliceNearlyEqual(t, valid, []float64{10, 16, 22}, 1e-12)

	if _, err := ConvolveMode(a, b, Mode(7)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

func TestConvolveSameEvenKernel(t *testing.T) {
	// For an even-length kernel the "same" window starts (len(b)-1)/2 = 1
	// sample into the full result.
	a := []float64{1, 0, 0, 0, 0, 0}
	b := []float64{1, 2, 3, 4}

	same, err := ConvolveMode(a, b, ModeSame)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, same, []float64{2, 3, 4, 0, 0, 0}, 1e-12)
}

func TestConvolveSameIdentity(t *testing.T) {
	signal := testutil.DeterministicSine(440, 48000, 0.5, 5000)

	// Unit impulse as a one-tap kernel, and centered inside a long FFT-path kernel.
	for _, kernel := range [][]float64{{1}, testutil.Impulse(201, 100)} {
		got, err := ConvolveMode(signal, kernel, ModeSame)
		if err != nil {
			t.Fatal(err)
		}

		testutil.RequireSliceNearlyEqual(t, got, signal, 1e-9)
	}
}

func TestConvolveSameLongKernel(t *testing.T) {
	signal := testutil.DeterministicNoise(3, 1, 100)
	kernel := makeDecayKernel(100)

	got, err := ConvolveMode(signal, kernel, ModeSame)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(signal) {
		t.Fatalf("len = %d, want %d", len(got), len(signal))
	}

	testutil.RequireFinite(t, got)

	full, _ := Direct(signal, kernel)
	start := (len(kernel) - 1) / 2
	for i := range got {
		if math.Abs(got[i]-full[start+i]) > 1e-9 {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], full[start+i])
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeSame.String() != "same" || ModeFull.String() != "full" || ModeValid.String() != "valid" {
		t.Fatal("unexpected mode names")
	}
	if Mode(9).String() != "unknown" {
		t.Fatal("expected unknown for out-of-range mode")
	}
}
