package ir

import (
	"errors"
	"math"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrNoDecay           = errors.New("ir: insufficient decay for RT calculation")
)

// Metrics holds impulse response analysis results.
type Metrics struct {
	GroupDelay float64 // median passband group delay in seconds
	RT60       float64 // reverberation time in seconds (extrapolated from T30 or T20)
	EDT        float64 // early decay time in seconds (0 to -10 dB)
	CenterTime float64 // energy centroid after the peak in seconds
	PeakIndex  int     // sample index of IR peak (absolute maximum)
}

// Analyzer computes IR metrics from impulse response data.
type Analyzer struct {
	SampleRate float64

	groupDelay []Option
}

// NewAnalyzer creates an IR analyzer with the given sample rate. The options
// configure the group delay estimate.
func NewAnalyzer(sampleRate float64, opts ...Option) *Analyzer {
	return &Analyzer{SampleRate: sampleRate, groupDelay: opts}
}

// Analyze computes all IR metrics from an impulse response.
//
// Group delay is measured on the whole response. The decay metrics start at
// the peak, so pre-delay silence does not bias them. A response without
// measurable decay reports zero RT60 and EDT rather than failing.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	if len(ir) == 0 {
		return Metrics{}, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return Metrics{}, ErrInvalidSampleRate
	}

	gd, err := MedianGroupDelay(ir, a.SampleRate, a.groupDelay...)
	if err != nil {
		return Metrics{}, err
	}

	peakIdx := findPeak(ir)
	irFromPeak := ir[peakIdx:]
	schroeder := a.schroederIntegral(irFromPeak)

	m := Metrics{
		GroupDelay: gd,
		PeakIndex:  peakIdx,
		CenterTime: a.centerTime(irFromPeak),
		EDT:        a.reverbTime(schroeder, 0, -10),
	}

	if m.RT60 = a.reverbTime(schroeder, -5, -35); m.RT60 == 0 {
		m.RT60 = a.reverbTime(schroeder, -5, -25)
	}

	return m, nil
}

// SchroederIntegral computes the Schroeder backward integration of the
// squared impulse response, returned in dB.
//
// S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
//
// This converts the noisy IR energy decay into a smooth decay curve
// suitable for reverberation time estimation.
func (a *Analyzer) SchroederIntegral(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	return a.schroederIntegral(ir), nil
}

func (a *Analyzer) schroederIntegral(ir []float64) []float64 {
	out := make([]float64, len(ir))

	var energy float64
	for i := len(ir) - 1; i >= 0; i-- {
		energy += ir[i] * ir[i]
		out[i] = energy
	}

	total := out[0]
	if total <= 0 {
		return out
	}

	for i, e := range out {
		if e <= 0 {
			out[i] = -200
			continue
		}
		out[i] = 10 * math.Log10(e/total)
	}

	return out
}

// reverbTime fits a line to the Schroeder curve between startDB and endDB
// and extrapolates it to -60 dB. It returns 0 when the curve never spans the
// range or does not decay.
func (a *Analyzer) reverbTime(schroeder []float64, startDB, endDB float64) float64 {
	if a.SampleRate <= 0 {
		return 0
	}

	start, end := -1, -1
	for i, v := range schroeder {
		if start < 0 && v <= startDB {
			start = i
		}
		if start >= 0 && v <= endDB {
			end = i
			break
		}
	}

	if start < 0 || end <= start {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := start; i <= end; i++ {
		x := float64(i - start)
		sumX += x
		sumY += schroeder[i]
		sumXX += x * x
		sumXY += x * schroeder[i]
	}

	n := float64(end - start + 1)
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	slope := (n*sumXY - sumX*sumY) / denom // dB per sample
	if slope >= 0 {
		return 0
	}

	return -60 / (slope * a.SampleRate)
}

// CenterTime computes the temporal energy centroid of the impulse response.
//
//	Ts = ∫₀^∞ τ·h²(τ)dτ / ∫₀^∞ h²(τ)dτ
//
// Returns the center time in seconds.
func (a *Analyzer) CenterTime(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	return a.centerTime(ir), nil
}

// centerTime computes Ts (unchecked).
func (a *Analyzer) centerTime(ir []float64) float64 {
	var numerator, denominator float64

	for i, v := range ir {
		e := v * v
		t := float64(i) / a.SampleRate
		numerator += t * e
		denominator += e
	}

	if denominator <= 0 {
		return 0
	}

	return numerator / denominator
}

// RT60 computes the reverberation time (time for -60 dB decay).
// Uses T30 extrapolation when possible, falls back to T20.
func (a *Analyzer) RT60(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	schroeder := a.schroederIntegral(ir)

	// Try T30 first
	rt := a.reverbTime(schroeder, -5, -35)
	if rt > 0 {
		return rt, nil
	}

	// Fall back to T20
	rt = a.reverbTime(schroeder, -5, -25)
	if rt > 0 {
		return rt, nil
	}

	return 0, ErrNoDecay
}

// findPeak returns the index of the absolute maximum in the IR.
func findPeak(ir []float64) int {
	peakIdx := 0
	peakVal := 0.0

	for i, v := range ir {
		av := math.Abs(v)
		if av > peakVal {
			peakVal = av
			peakIdx = i
		}
	}

	return peakIdx
}
