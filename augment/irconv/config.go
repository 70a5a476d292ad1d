package irconv

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-augment/augment"
	"github.com/cwbudde/algo-augment/measure/ir"
)

// Config describes an impulse-response convolution deformer.
type Config struct {
	// IRSources lists impulse responses in the order their states are
	// generated. Each entry is resolved by the Loader.
	IRSources []string
	// FFTSize is the number of frequency bins used for delay estimation.
	FFTSize int
	// Rolloff is the passband threshold below the peak response in dB.
	// Positive values are treated as their negation.
	Rolloff float64
	// Method selects the group delay computation.
	Method ir.Method
}

// DefaultConfig returns a configuration with the default analysis settings
// and no sources.
func DefaultConfig(sources ...string) Config {
	return Config{
		IRSources: sources,
		FFTSize:   ir.DefaultFFTSize,
		Rolloff:   ir.DefaultRolloff,
		Method:    ir.MethodDerivative,
	}
}

// Validate checks c and normalises Rolloff to a non-positive value.
func (c *Config) Validate() error {
	if len(c.IRSources) == 0 {
		return fmt.Errorf("%w: no impulse response sources", augment.ErrConfiguration)
	}
	for i, src := range c.IRSources {
		if src == "" {
			return fmt.Errorf("%w: empty impulse response source at %d", augment.ErrConfiguration, i)
		}
	}
	if c.FFTSize <= 0 {
		return fmt.Errorf("%w: fft size %d", augment.ErrConfiguration, c.FFTSize)
	}
	if math.IsNaN(c.Rolloff) || math.IsInf(c.Rolloff, 0) {
		return fmt.Errorf("%w: rolloff %g", augment.ErrConfiguration, c.Rolloff)
	}
	if c.Method != ir.MethodDerivative && c.Method != ir.MethodPhaseDifference {
		return fmt.Errorf("%w: %s", augment.ErrConfiguration, c.Method)
	}

	c.Rolloff = -math.Abs(c.Rolloff)

	return nil
}
