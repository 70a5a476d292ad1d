package ir

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-augment/dsp/core"
	"github.com/cwbudde/algo-augment/dsp/spectrum"
	"gonum.org/v1/gonum/floats"
)

// Errors returned by group delay estimation.
var (
	ErrInvalidFFTSize = errors.New("ir: fft size must be positive")
	ErrNoPassband     = errors.New("ir: no frequency bin above the rolloff threshold")
)

const (
	// DefaultFFTSize is the default number of analysis bins.
	DefaultFFTSize = 2048
	// DefaultRolloff is the default passband threshold below the peak in dB.
	DefaultRolloff = -24.0

	magnitudeFloor = 1e-8
)

// Method selects how group delay is derived from the frequency response.
type Method int

const (
	// MethodDerivative uses Re{DFT(t*h)/DFT(h)} and needs no unwrapping.
	MethodDerivative Method = iota
	// MethodPhaseDifference differentiates the unwrapped phase response.
	MethodPhaseDifference
)

func (m Method) String() string {
	switch m {
	case MethodDerivative:
		return "derivative"
	case MethodPhaseDifference:
		return "phase"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps "derivative" or "phase" to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "derivative":
		return MethodDerivative, nil
	case "phase":
		return MethodPhaseDifference, nil
	default:
		return 0, fmt.Errorf("ir: unknown group delay method %q", s)
	}
}

type groupDelayConfig struct {
	fftSize int
	rolloff float64
	method  Method
}

// Option configures MedianGroupDelay.
type Option func(*groupDelayConfig)

// WithFFTSize sets the number of frequency bins on [0, pi).
func WithFFTSize(n int) Option {
	return func(c *groupDelayConfig) { c.fftSize = n }
}

// WithRolloff sets the passband threshold relative to the peak magnitude in
// dB. Positive values are negated, so 24 and -24 are equivalent.
func WithRolloff(db float64) Option {
	return func(c *groupDelayConfig) { c.rolloff = -math.Abs(db) }
}

// WithMethod selects the group delay method.
func WithMethod(m Method) Option {
	return func(c *groupDelayConfig) { c.method = m }
}

// MedianGroupDelay estimates the propagation delay of an impulse response in
// seconds.
//
// The group delay is evaluated on fftSize bins spanning [0, pi) and the median
// is taken over the bins whose magnitude lies strictly above
// max(dB) + rolloff. Weak bins carry unreliable phase and are excluded.
func MedianGroupDelay(y []float64, sampleRate float64, opts ...Option) (float64, error) {
	cfg := groupDelayConfig{
		fftSize: DefaultFFTSize,
		rolloff: DefaultRolloff,
		method:  MethodDerivative,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(y) == 0 {
		return 0, ErrEmptyIR
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 1) {
		return 0, ErrInvalidSampleRate
	}
	if cfg.fftSize <= 0 {
		return 0, ErrInvalidFFTSize
	}

	h, err := spectrum.FrequencyResponse(y, cfg.fftSize)
	if err != nil {
		return 0, err
	}

	mag := spectrum.Magnitude(h)
	if floats.Max(mag) == 0 {
		return 0, ErrNoPassband
	}

	db := make([]float64, len(mag))
	core.AmplitudesToDB(db, mag, magnitudeFloor)
	threshold := floats.Max(db) + cfg.rolloff

	var gd []float64
	if cfg.method == MethodPhaseDifference && len(h) > 1 {
		gd, err = spectrum.GroupDelayFromPhase(spectrum.UnwrapPhase(spectrum.Phase(h)), 2*cfg.fftSize)
	} else {
		// A single bin has no phase slope to difference.
		gd, err = spectrum.GroupDelay(y, cfg.fftSize)
	}
	if err != nil {
		return 0, err
	}

	pass := make([]float64, 0, len(gd))
	for k, v := range gd {
		if db[k] > threshold {
			pass = append(pass, v)
		}
	}
	if len(pass) == 0 {
		return 0, ErrNoPassband
	}

	return median(pass) / sampleRate, nil
}

// median sorts values in place. Even counts average the two middle values.
func median(values []float64) float64 {
	slices.Sort(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
