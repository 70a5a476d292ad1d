package resample

import (
	"errors"
	"math"
	"testing"
)

func TestRationalize(t *testing.T) {
	tests := []struct {
		v        float64
		maxDen   int
		num, den int
	}{
		{48000.0 / 44100.0, 4096, 160, 147},
		{16000.0 / 44100.0, 4096, 160, 441},
		{2, 4096, 2, 1},
		{0.5, 4096, 1, 2},
		{math.Pi, 10, 22, 7},
		{math.NaN(), 4096, 1, 1},
		{-3, 4096, 1, 1},
	}

	for _, tc := range tests {
		num, den := rationalize(tc.v, tc.maxDen)
		if num != tc.num || den != tc.den {
			t.Errorf("rationalize(%v, %d) = %d/%d, want %d/%d", tc.v, tc.maxDen, num, den, tc.num, tc.den)
		}
	}
}

func TestDesignPolyphaseBranches(t *testing.T) {
	cfg := newConfig([]Option{WithTapsPerPhase(32)})

	p, err := designPolyphase(3, 2, cfg)
	if err != nil {
		t.Fatalf("designPolyphase() error = %v", err)
	}

	if len(p.taps) != 96 || len(p.branches) != 3 || p.width != 32 {
		t.Fatalf("taps=%d branches=%d width=%d, want 96/3/32", len(p.taps), len(p.branches), p.width)
	}

	// Each branch sees the full DC gain of the interpolated signal.
	for b, branch := range p.branches {
		var sum float64
		for _, c := range branch {
			sum += c
		}
		if math.Abs(sum-1) > 0.02 {
			t.Errorf("branch %d DC gain = %.4f, want about 1", b, sum)
		}
	}

	// Linear phase.
	for i := range p.taps {
		j := len(p.taps) - 1 - i
		if math.Abs(p.taps[i]-p.taps[j]) > 1e-12 {
			t.Fatalf("taps not symmetric at %d: %v vs %v", i, p.taps[i], p.taps[j])
		}
	}
}

func TestDesignPolyphaseRejectsBadConfig(t *testing.T) {
	cfg := newConfig(nil)
	cfg.cutoffScale = 1.5

	if _, err := designPolyphase(1, 2, cfg); !errors.Is(err, ErrInvalidDesign) {
		t.Fatalf("error = %v, want ErrInvalidDesign", err)
	}
	if _, err := designPolyphase(0, 2, newConfig(nil)); !errors.Is(err, ErrInvalidRatio) {
		t.Fatalf("error = %v, want ErrInvalidRatio", err)
	}
}

func TestQualityAttenuation(t *testing.T) {
	tests := []struct {
		quality       Quality
		maxPassbandDB float64
		minStopbandDB float64
	}{
		{QualityFast, 0.7, 20},
		{QualityBalanced, 0.35, 35},
		{QualityBest, 0.2, 50},
	}

	pass := sine(2000, 48000, 32768)
	stop := sine(17000, 48000, 32768)

	for _, tc := range tests {
		measure := func(in []float64) float64 {
			r, err := NewRational(1, 2, WithQuality(tc.quality))
			if err != nil {
				t.Fatalf("quality %d: NewRational() error = %v", tc.quality, err)
			}
			return dbRatio(rms(r.Process(in)[2048:]), rms(in[4096:]))
		}

		if droop := math.Abs(measure(pass)); droop > tc.maxPassbandDB {
			t.Errorf("quality %d: passband droop %.2f dB > %.2f dB", tc.quality, droop, tc.maxPassbandDB)
		}
		if atten := -measure(stop); atten < tc.minStopbandDB {
			t.Errorf("quality %d: stopband attenuation %.2f dB < %.2f dB", tc.quality, atten, tc.minStopbandDB)
		}
	}
}
