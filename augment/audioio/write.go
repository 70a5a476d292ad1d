package audioio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-augment/dsp/core"
)

// ErrUnsupportedBitDepth is returned by WriteWAV for depths other than 16 and 24.
var ErrUnsupportedBitDepth = errors.New("audioio: bit depth must be 16 or 24")

// WriteWAV writes sig as a mono PCM WAV file. Samples outside [-1, 1) are
// clipped to the largest representable value and NaN is written as silence.
func WriteWAV(path string, sig Signal, bitDepth int) (err error) {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if sig.SampleRate <= 0 {
		return fmt.Errorf("audioio: invalid sample rate %g", sig.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	limit := 1 - math.Pow(2, -float64(bitDepth-1))
	data := make([]float64, len(sig.Samples))
	for i, v := range sig.Samples {
		if math.IsNaN(v) {
			v = 0
		}
		data[i] = core.Clamp(v, -limit, limit)
	}

	rate := int(math.Round(sig.SampleRate))
	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:   data,
	}
	if err := transforms.PCMScale(buf, bitDepth); err != nil {
		return fmt.Errorf("audioio: scale %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, rate, bitDepth, 1, 1)
	if err := enc.Write(buf.AsIntBuffer()); err != nil {
		return fmt.Errorf("audioio: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audioio: finalize %s: %w", path, err)
	}

	return nil
}
