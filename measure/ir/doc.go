// Package ir analyses measured impulse responses.
//
// [MedianGroupDelay] estimates how far an impulse response delays the signal
// it is convolved with. It takes the median group delay over the bins whose
// magnitude lies within a rolloff of the spectral peak, which makes it robust
// to deep notches and noisy stopbands.
//
// [Analyzer] adds decay metrics derived from the Schroeder backward
// integration of the squared response:
//
//   - RT60: reverberation time, extrapolated from T30 or T20
//   - EDT: early decay time, extrapolated from 0 to -10 dB
//   - Center time: temporal energy centroid
//
// # Usage
//
//	delay, err := ir.MedianGroupDelay(response, 48000, ir.WithRolloff(-24))
//
//	metrics, err := ir.NewAnalyzer(48000).Analyze(response)
//	fmt.Printf("delay = %.4f s, RT60 = %.2f s\n", metrics.GroupDelay, metrics.RT60)
package ir
