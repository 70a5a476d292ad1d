// Package core holds small numeric and buffer helpers shared by the DSP and
// augmentation packages.
package core

// FixLength returns buf trimmed or zero-padded at the end to exactly n
// samples. A non-positive n yields an empty slice.
//
// Spare capacity of buf is reused when growing. Samples past the old length
// are always cleared.
func FixLength(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if len(buf) >= n {
		return buf[:n]
	}

	old := len(buf)
	if cap(buf) < n {
		out := make([]float64, n)
		copy(out, buf)
		return out
	}

	out := buf[:n]
	clear(out[old:])
	return out
}
