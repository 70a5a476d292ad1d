// Package spectrum provides spectrum-domain utilities: magnitude and phase
// extraction, phase unwrapping, and group delay.
//
// [FrequencyResponse] and [GroupDelay] evaluate an FIR filter, such as a
// measured impulse response, on the non-negative half of the spectrum. The
// remaining helpers operate on complex bins produced by any FFT backend.
package spectrum
