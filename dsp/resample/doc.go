// Package resample provides rational sample-rate conversion using polyphase FIR
// filtering with anti-aliasing defaults.
//
// Quality modes trade CPU for stopband attenuation:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
//
// [Resampler] streams blocks and keeps the filter delay. [Convert] processes a
// whole signal and removes that delay, which is what loaders need when the
// timing of a resampled impulse response matters.
package resample
