package spectrum

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Errors returned by the filter response functions.
var (
	ErrEmptyCoefficients = errors.New("spectrum: empty filter coefficients")
	ErrInvalidBinCount   = errors.New("spectrum: bin count must be > 0")
)

// singularRatio marks response bins too close to zero, relative to the
// largest bin, for a stable group-delay quotient.
const singularRatio = 1e-10

// FrequencyResponse evaluates the response of the FIR filter coeffs on n
// equally spaced frequencies covering [0, pi) rad/sample:
//
//	H[k] = sum_t coeffs[t] * exp(-j*pi*k*t/n),  k = 0..n-1
//
// The bins come from one real FFT of size 2n. Filters longer than 2n are
// folded modulo 2n first, which is exact on this frequency grid, so the
// length of coeffs is not limited by n.
func FrequencyResponse(coeffs []float64, n int) ([]complex128, error) {
	if len(coeffs) == 0 {
		return nil, ErrEmptyCoefficients
	}
	if n <= 0 {
		return nil, ErrInvalidBinCount
	}

	return halfSpectrum(fold(coeffs, 2*n, nil), n), nil
}

// GroupDelay returns the group delay of the FIR filter coeffs in samples on
// the same n bins as [FrequencyResponse].
//
// It uses the derivative identity tau(w) = Re{ DFT(t*h[t]) / DFT(h[t]) },
// which needs no phase unwrapping. Bins where |H| is at or below 1e-10 of the
// largest bin are singular and report 0.
func GroupDelay(coeffs []float64, n int) ([]float64, error) {
	if len(coeffs) == 0 {
		return nil, ErrEmptyCoefficients
	}
	if n <= 0 {
		return nil, ErrInvalidBinCount
	}

	size := 2 * n
	h := halfSpectrum(fold(coeffs, size, nil), n)
	d := halfSpectrum(fold(coeffs, size, func(t int, c float64) float64 { return float64(t) * c }), n)

	peak := 0.0
	for _, v := range h {
		peak = max(peak, cmplx.Abs(v))
	}
	tol := singularRatio * peak

	out := make([]float64, n)
	for k := range out {
		if cmplx.Abs(h[k]) <= tol {
			continue
		}
		out[k] = real(d[k] / h[k])
	}
	return out, nil
}

// fold time-aliases coeffs onto size samples, optionally weighting each
// coefficient by its original index first.
func fold(coeffs []float64, size int, weight func(t int, c float64) float64) []float64 {
	seq := make([]float64, size)
	for t, c := range coeffs {
		if weight != nil {
			c = weight(t, c)
		}
		seq[t%size] += c
	}
	return seq
}

// halfSpectrum returns the first n bins of the real FFT of seq.
func halfSpectrum(seq []float64, n int) []complex128 {
	fft := fourier.NewFFT(len(seq))
	coeff := fft.Coefficients(nil, seq)
	return coeff[:n]
}
