// Package audioio loads impulse responses and audio as mono float64 signals
// and writes deformed audio back to disk.
package audioio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-augment/augment"
	"github.com/cwbudde/algo-augment/dsp/resample"
)

// ErrUnsupportedFormat is returned for file extensions without a decoder.
var ErrUnsupportedFormat = errors.New("audioio: unsupported format")

// Signal is a mono signal.
type Signal struct {
	Samples    []float64
	SampleRate float64
}

// Duration returns the signal length in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / s.SampleRate
}

// Loader resolves a source identifier to a mono signal at targetRate.
type Loader interface {
	Load(ctx context.Context, sourceID string, targetRate float64) (Signal, error)
}

// FileLoader reads WAV, AIFF and IRLB files from the local file system.
//
// An IRLB library holds several responses; select one with a fragment, either
// by name ("hall.irlib#Large Hall") or by index ("hall.irlib#2"). Without a
// fragment the first response is used.
type FileLoader struct {
	quality resample.Quality
}

// LoaderOption configures a FileLoader.
type LoaderOption func(*FileLoader)

// WithResampleQuality sets the anti-aliasing quality used when the file rate
// differs from the target rate.
func WithResampleQuality(q resample.Quality) LoaderOption {
	return func(l *FileLoader) { l.quality = q }
}

// NewFileLoader returns a FileLoader.
func NewFileLoader(opts ...LoaderOption) *FileLoader {
	l := &FileLoader{quality: resample.QualityBalanced}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load decodes sourceID, averages its channels to mono and resamples it to
// targetRate. A targetRate of 0 keeps the native rate. Errors wrap
// augment.ErrLoad.
func (l *FileLoader) Load(ctx context.Context, sourceID string, targetRate float64) (Signal, error) {
	sig, err := l.load(ctx, sourceID, targetRate)
	if err != nil {
		return Signal{}, fmt.Errorf("%w: %s: %w", augment.ErrLoad, sourceID, err)
	}
	return sig, nil
}

func (l *FileLoader) load(ctx context.Context, sourceID string, targetRate float64) (Signal, error) {
	if err := ctx.Err(); err != nil {
		return Signal{}, err
	}
	if targetRate < 0 || math.IsNaN(targetRate) {
		return Signal{}, fmt.Errorf("invalid target rate %g", targetRate)
	}

	path, selector := splitSelector(sourceID)

	var (
		sig Signal
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".aif", ".aiff":
		sig, err = decodePCM(path, ext)
	case ".irlib":
		sig, err = readIRLibFile(path, selector)
	default:
		return Signal{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Signal{}, err
	}

	if targetRate == 0 || targetRate == sig.SampleRate {
		return sig, nil
	}

	y, err := resample.Convert(sig.Samples, sig.SampleRate, targetRate, resample.WithQuality(l.quality))
	if err != nil {
		return Signal{}, err
	}

	return Signal{Samples: y, SampleRate: targetRate}, nil
}

// splitSelector separates an IRLB fragment from the path. Fragments are only
// recognised after an .irlib extension so that '#' stays legal in other
// file names.
func splitSelector(sourceID string) (path, selector string) {
	i := strings.LastIndex(sourceID, "#")
	if i < 0 || !strings.EqualFold(filepath.Ext(sourceID[:i]), ".irlib") {
		return sourceID, ""
	}
	return sourceID[:i], sourceID[i+1:]
}

func decodePCM(path, ext string) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer f.Close()

	var buf *audio.IntBuffer
	if ext == ".wav" {
		buf, err = wav.NewDecoder(f).FullPCMBuffer()
	} else {
		buf, err = aiff.NewDecoder(f).FullPCMBuffer()
	}
	if err != nil {
		return Signal{}, fmt.Errorf("decode %s: %w", ext, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return Signal{}, fmt.Errorf("decode %s: missing format", ext)
	}

	if buf.SourceBitDepth <= 0 {
		return Signal{}, fmt.Errorf("decode %s: unknown bit depth", ext)
	}

	// 8-bit WAV stores unsigned samples centred on 128.
	offset := 0
	if ext == ".wav" && buf.SourceBitDepth == 8 {
		offset = 128
	}

	scale := math.Pow(2, float64(buf.SourceBitDepth-1))
	mono := downmix(buf.Data, buf.Format.NumChannels, func(v int) float64 { return float64(v-offset) / scale })

	return Signal{Samples: mono, SampleRate: float64(buf.Format.SampleRate)}, nil
}

// downmix averages interleaved channels into one.
func downmix[T any](interleaved []T, channels int, conv func(T) float64) []float64 {
	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += conv(interleaved[i*channels+ch])
		}
		out[i] = sum / float64(channels)
	}
	return out
}
