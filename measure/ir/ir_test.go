package ir

import (
	"errors"
	"math"
	"testing"
)

// makeExponentialDecay generates a synthetic IR with known RT60.
// h(t) = exp(-6.908 * t / rt60) where 6.908 = ln(10^3) ensures -60 dB at rt60.
func makeExponentialDecay(sampleRate float64, rt60 float64, durationSec float64) []float64 {
	n := int(sampleRate * durationSec)
	ir := make([]float64, n)
	decayRate := 6.9078 / rt60
	for i := range ir {
		ir[i] = math.Exp(-decayRate * float64(i) / sampleRate)
	}
	return ir
}

func TestAnalyzerAnalyze(t *testing.T) {
	const (
		sampleRate = 48000.0
		rt60       = 1.0
		predelay   = 480
	)

	decay := makeExponentialDecay(sampleRate, rt60, 3.0)
	ir := append(make([]float64, predelay), decay...)

	metrics, err := NewAnalyzer(sampleRate).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(metrics.RT60-rt60) > 0.05*rt60 {
		t.Errorf("RT60 = %.3f, want %.3f (±5%%)", metrics.RT60, rt60)
	}

	if metrics.PeakIndex != predelay {
		t.Errorf("PeakIndex = %d, want %d", metrics.PeakIndex, predelay)
	}

	if metrics.CenterTime <= 0 || metrics.CenterTime > rt60 {
		t.Errorf("CenterTime = %.3f, expected between 0 and %.3f", metrics.CenterTime, rt60)
	}

	if metrics.GroupDelay < predelay/sampleRate {
		t.Errorf("GroupDelay = %.5f, expected at least the %.5f s pre-delay", metrics.GroupDelay, predelay/sampleRate)
	}
}

func TestAnalyzerGroupDelayOptions(t *testing.T) {
	ir := make([]float64, 64)
	ir[40] = 1

	metrics, err := NewAnalyzer(8000, WithFFTSize(128), WithMethod(MethodPhaseDifference)).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(metrics.GroupDelay-40.0/8000) > 1e-9 {
		t.Errorf("GroupDelay = %g, want %g", metrics.GroupDelay, 40.0/8000)
	}
}

func TestAnalyzeSilentIR(t *testing.T) {
	_, err := NewAnalyzer(48000).Analyze(make([]float64, 256))
	if !errors.Is(err, ErrNoPassband) {
		t.Errorf("Analyze(silence) = %v, want ErrNoPassband", err)
	}
}

func TestSchroederIntegral(t *testing.T) {
	sampleRate := 48000.0
	ir := makeExponentialDecay(sampleRate, 1.0, 3.0)

	schroeder, err := NewAnalyzer(sampleRate).SchroederIntegral(ir)
	if err != nil {
		t.Fatal(err)
	}

	if len(schroeder) != len(ir) {
		t.Fatalf("Schroeder length = %d, want %d", len(schroeder), len(ir))
	}

	if math.Abs(schroeder[0]) > 0.01 {
		t.Errorf("Schroeder[0] = %.3f dB, want ~0 dB", schroeder[0])
	}

	for i := 1; i < len(schroeder); i++ {
		if schroeder[i] > schroeder[i-1]+0.001 {
			t.Fatalf("Schroeder not monotonically decreasing at sample %d: %.3f > %.3f",
				i, schroeder[i], schroeder[i-1])
		}
	}

	// 0.5 s into a 1 s RT60 decay is -30 dB.
	if got := schroeder[24000]; math.Abs(got+30) > 0.5 {
		t.Errorf("Schroeder[0.5s] = %.2f dB, want ~-30 dB", got)
	}
}

func TestSchroederIntegralEmpty(t *testing.T) {
	_, err := NewAnalyzer(48000).SchroederIntegral(nil)
	if !errors.Is(err, ErrEmptyIR) {
		t.Errorf("SchroederIntegral(nil) = %v, want ErrEmptyIR", err)
	}
}

func TestRT60ExponentialDecay(t *testing.T) {
	sampleRate := 48000.0
	tests := []struct {
		name   string
		rt60   float64
		durSec float64
	}{
		{"short", 0.3, 1.5},
		{"medium", 1.0, 3.0},
		{"long", 2.5, 8.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir := makeExponentialDecay(sampleRate, tt.rt60, tt.durSec)

			rt, err := NewAnalyzer(sampleRate).RT60(ir)
			if err != nil {
				t.Fatal(err)
			}

			if math.Abs(rt-tt.rt60) > 0.05*tt.rt60 {
				t.Errorf("RT60 = %.4f, want %.4f (±5%%)", rt, tt.rt60)
			}
		})
	}
}

func TestRT60NoDecay(t *testing.T) {
	analyzer := NewAnalyzer(48000)

	for _, ir := range [][]float64{{1.0}, {1.0, 0.5}} {
		if _, err := analyzer.RT60(ir); !errors.Is(err, ErrNoDecay) {
			t.Errorf("RT60(%v) = %v, want ErrNoDecay", ir, err)
		}
	}
}

func TestCenterTime(t *testing.T) {
	sampleRate := 48000.0

	t.Run("single_impulse", func(t *testing.T) {
		ir := make([]float64, 1000)
		ir[0] = 1.0

		ct, err := NewAnalyzer(sampleRate).CenterTime(ir)
		if err != nil {
			t.Fatal(err)
		}
		if ct != 0 {
			t.Errorf("CenterTime = %g, want 0 for impulse at t=0", ct)
		}
	})

	t.Run("two_equal_impulses", func(t *testing.T) {
		// Equal impulses at t=0 and t=100ms balance at 50ms.
		ir := make([]float64, int(sampleRate*0.2))
		ir[0] = 1.0
		ir[int(0.1*sampleRate)] = 1.0

		ct, err := NewAnalyzer(sampleRate).CenterTime(ir)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(ct-0.05) > 0.001 {
			t.Errorf("CenterTime = %.4f, want ~0.05", ct)
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewAnalyzer(48000).CenterTime(nil)
		if !errors.Is(err, ErrEmptyIR) {
			t.Errorf("CenterTime(nil) = %v, want ErrEmptyIR", err)
		}
	})
}

func TestAnalyzeValidation(t *testing.T) {
	if _, err := NewAnalyzer(48000).Analyze(nil); !errors.Is(err, ErrEmptyIR) {
		t.Errorf("Analyze(nil) = %v, want ErrEmptyIR", err)
	}

	for _, sr := range []float64{0, -1} {
		if _, err := NewAnalyzer(sr).Analyze([]float64{1}); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("Analyze(sr=%g) = %v, want ErrInvalidSampleRate", sr, err)
		}
	}
}

func TestEDT(t *testing.T) {
	sampleRate := 48000.0
	rt60 := 2.0
	ir := makeExponentialDecay(sampleRate, rt60, 6.0)

	metrics, err := NewAnalyzer(sampleRate).Analyze(ir)
	if err != nil {
		t.Fatal(err)
	}

	// A pure exponential decays at one rate, so EDT equals RT60.
	if math.Abs(metrics.EDT-rt60) > 0.10*rt60 {
		t.Errorf("EDT = %.3f, want ~%.3f (±10%%)", metrics.EDT, rt60)
	}
}
