package core

import "math"

// Clamp limits value to the inclusive range spanned by lo and hi. The bounds
// may be given in either order.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Min(math.Max(value, lo), hi)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}
	return 20 * math.Log10(linear)
}

// AmplitudeToDB converts a magnitude to dB after clipping it to floor.
//
// Unlike [LinearToDB] the result is always finite for finite input: zero,
// negative and NaN values map to 20*log10(floor). A non-positive floor
// disables clipping.
func AmplitudeToDB(magnitude, floor float64) float64 {
	if floor > 0 && !(magnitude >= floor) {
		magnitude = floor
	}
	return LinearToDB(magnitude)
}

// AmplitudesToDB converts every element of src into dst with [AmplitudeToDB].
// dst must be at least as long as src.
func AmplitudesToDB(dst, src []float64, floor float64) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1]
	for i, v := range src {
		dst[i] = AmplitudeToDB(v, floor)
	}
}
