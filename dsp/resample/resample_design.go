package resample

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidDesign reports filter parameters that cannot produce a lowpass.
var ErrInvalidDesign = errors.New("resample: invalid filter design")

// polyphase is a Kaiser-windowed sinc lowpass running at up times the input
// rate, split into up interleaved branches.
type polyphase struct {
	taps     []float64
	branches [][]float64
	width    int // length of the longest branch
}

func designPolyphase(up, down int, cfg config) (polyphase, error) {
	if up <= 0 || down <= 0 {
		return polyphase{}, ErrInvalidRatio
	}
	if cfg.tapsPerPhase <= 0 || cfg.cutoffScale <= 0 || cfg.cutoffScale > 1 {
		return polyphase{}, ErrInvalidDesign
	}

	// Normalized cutoff in cycles per upsampled sample.
	fc := cfg.cutoffScale * 0.5 / float64(max(up, down))

	n := cfg.tapsPerPhase * up
	taps := make([]float64, n)
	mid := 0.5 * float64(n-1)
	norm := besselI0(cfg.kaiserBeta)
	for i := range taps {
		x := float64(i) - mid
		taps[i] = 2 * fc * sinc(2*fc*x) * kaiser(i, n, cfg.kaiserBeta, norm)
	}

	// Unity DC gain per branch after zero stuffing.
	sum := floats.Sum(taps)
	if sum == 0 || math.IsNaN(sum) {
		return polyphase{}, ErrInvalidDesign
	}
	floats.Scale(float64(up)/sum, taps)

	p := polyphase{taps: taps, branches: make([][]float64, up)}
	for b := range p.branches {
		branch := make([]float64, 0, (n-b+up-1)/up)
		for i := b; i < n; i += up {
			branch = append(branch, taps[i])
		}
		p.branches[b] = branch
		p.width = max(p.width, len(branch))
	}

	return p, nil
}

// rationalize returns the best continued-fraction approximation num/den of v
// with den <= maxDen.
func rationalize(v float64, maxDen int) (num, den int) {
	if maxDen <= 0 {
		maxDen = 4096
	}
	if !validRate(v) {
		return 1, 1
	}

	// Convergents h/k of the continued fraction of v.
	hPrev, kPrev := 1, 0
	h, k := int(math.Floor(v)), 1

	for x := v; ; {
		frac := x - math.Floor(x)
		if frac < 1e-12 {
			break
		}
		x = 1 / frac
		a := int(math.Floor(x))

		hNext, kNext := a*h+hPrev, a*k+kPrev
		if kNext > maxDen {
			break
		}
		hPrev, kPrev, h, k = h, k, hNext, kNext
	}

	if h <= 0 || k <= 0 {
		return 1, 1
	}

	g := gcd(h, k)
	return h / g, k / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return max(a, 1)
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// kaiser evaluates the n-point Kaiser window at i. norm is I0(beta).
func kaiser(i, n int, beta, norm float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}
	t := 2*float64(i)/float64(n-1) - 1
	return besselI0(beta*math.Sqrt(math.Max(0, 1-t*t))) / norm
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// summed from its power series.
func besselI0(x float64) float64 {
	q := x * x / 4
	sum, term := 1.0, 1.0
	for k := 1.0; k < 64; k++ {
		term *= q / (k * k)
		sum += term
		if term < 1e-16*sum {
			break
		}
	}
	return sum
}
