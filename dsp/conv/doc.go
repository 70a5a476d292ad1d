// Package conv provides offline linear convolution.
//
// Two strategies are available:
//
//   - Direct convolution: O(N*M) time-domain convolution, best for short kernels (<= 64 samples)
//   - Overlap-add (OLA): FFT-based block convolution, efficient for long signals and long kernels
//
// # Usage
//
//	result, err := conv.Convolve(signal, kernel)                  // Auto-selects the algorithm
//	same, err := conv.ConvolveMode(signal, kernel, conv.ModeSame) // Trimmed to len(signal)
//
// For repeated convolution with the same kernel, create a reusable convolver:
//
//	c, err := conv.NewOverlapAdd(kernel, blockSize)
//	result, err := c.Process(signal)
//
// # Output modes
//
// [ModeSame] returns len(a) samples centered on the full result, starting
// (len(b)-1)/2 samples in. A kernel that is a unit impulse at its center
// sample therefore reproduces the input exactly.
package conv
