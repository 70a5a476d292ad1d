// Package testutil holds deterministic test signals and tolerance helpers
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// SyntheticRoomIR generates a reproducible room-like impulse response: silence
// up to onset, a unit direct-sound spike, then seeded noise decaying by 60 dB
// over rt60 seconds.
func SyntheticRoomIR(seed int64, sampleRate, rt60 float64, onset, length int) []float64 {
	out := make([]float64, length)
	if onset < 0 || onset >= length {
		return out
	}

	rng := rand.New(rand.NewSource(seed))
	decay := math.Log(1000) / (rt60 * sampleRate) // ln(10^3) per rt60 in samples
	out[onset] = 1
	for i := onset + 1; i < length; i++ {
		out[i] = 0.3 * (rng.Float64()*2 - 1) * math.Exp(-decay*float64(i-onset))
	}
	return out
}
