// Package irconv simulates recording conditions by convolving audio with
// measured impulse responses.
//
// Convolution delays the signal by the propagation time of the response, so
// annotation tracks are shifted by the response's estimated group delay to
// stay aligned with the audio.
package irconv

import (
	"context"
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cwbudde/algo-augment/augment"
	"github.com/cwbudde/algo-augment/augment/annotation"
	"github.com/cwbudde/algo-augment/augment/audioio"
	"github.com/cwbudde/algo-augment/dsp/conv"
	"github.com/cwbudde/algo-augment/dsp/core"
	"github.com/cwbudde/algo-augment/internal/trace"
	"github.com/cwbudde/algo-augment/measure/ir"
)

// IRConvolution is a deformer with one state per impulse response.
type IRConvolution struct {
	cfg    Config
	loader audioio.Loader
	log    logrus.FieldLogger
}

var _ augment.Deformer = (*IRConvolution)(nil)

// Option configures an IRConvolution.
type Option func(*IRConvolution)

// WithLoader sets the loader that resolves IR sources. The default is an
// audioio.FileLoader.
func WithLoader(l audioio.Loader) Option {
	return func(c *IRConvolution) {
		if l != nil {
			c.loader = l
		}
	}
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *IRConvolution) {
		if l != nil {
			c.log = l
		}
	}
}

// New validates cfg and returns the deformer. No source is touched until
// States, Audio or Annotation runs.
func New(cfg Config, opts ...Option) (*IRConvolution, error) {
	cfg.IRSources = append([]string(nil), cfg.IRSources...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &IRConvolution{
		cfg:    cfg,
		loader: audioio.NewFileLoader(),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Config returns the validated configuration.
func (c *IRConvolution) Config() Config {
	cfg := c.cfg
	cfg.IRSources = append([]string(nil), c.cfg.IRSources...)
	return cfg
}

// States loads each impulse response at sampleRate, estimates its median
// group delay and yields one state per source in configuration order.
//
// Each range over the sequence reloads the sources. The first load or
// estimation failure is yielded and ends the sequence.
func (c *IRConvolution) States(ctx context.Context, sampleRate float64) iter.Seq2[augment.State, error] {
	return func(yield func(augment.State, error) bool) {
		ctx, span := trace.StartSpan(ctx, "irconv.states",
			attribute.Int("ir.count", len(c.cfg.IRSources)),
			attribute.Float64("audio.sample_rate", sampleRate),
		)
		defer span.End()

		for i, src := range c.cfg.IRSources {
			state, err := c.state(ctx, src, sampleRate)
			if err != nil {
				trace.RecordError(span, err)
				yield(augment.State{}, err)
				return
			}

			c.log.WithFields(logrus.Fields{
				"function":    "States",
				"index":       i,
				"source":      src,
				"group_delay": state.GroupDelay,
			}).Debug("impulse response state")

			if !yield(state, nil) {
				return
			}
		}
	}
}

func (c *IRConvolution) state(ctx context.Context, src string, sampleRate float64) (augment.State, error) {
	sig, err := c.loader.Load(ctx, src, sampleRate)
	if err != nil {
		return augment.State{}, err
	}

	delay, err := ir.MedianGroupDelay(sig.Samples, sig.SampleRate,
		ir.WithFFTSize(c.cfg.FFTSize),
		ir.WithRolloff(c.cfg.Rolloff),
		ir.WithMethod(c.cfg.Method),
	)
	if err != nil {
		return augment.State{}, fmt.Errorf("%w: %s: %w", augment.ErrEstimation, src, err)
	}

	return augment.State{SourceID: src, GroupDelay: delay}, nil
}

// Audio convolves the buffer with the state's impulse response, loaded at the
// buffer's sample rate. The result keeps the buffer length and is centred as
// in "same" mode convolution. A buffer shorter than the response is first
// zero-padded at the end to the response length.
func (c *IRConvolution) Audio(ctx context.Context, audio *augment.AudioContext, state augment.State) error {
	ctx, span := trace.StartSpan(ctx, "irconv.audio",
		attribute.String("ir.source", state.SourceID),
		attribute.Int("audio.samples", len(audio.Samples)),
	)
	defer span.End()

	err := c.convolve(ctx, audio, state)
	trace.RecordError(span, err)

	return err
}

func (c *IRConvolution) convolve(ctx context.Context, audio *augment.AudioContext, state augment.State) error {
	sig, err := c.loader.Load(ctx, state.SourceID, audio.SampleRate)
	if err != nil {
		return err
	}
	if len(sig.Samples) == 0 {
		return fmt.Errorf("%w: %s: empty impulse response", augment.ErrLoad, state.SourceID)
	}

	buf := audio.Samples
	if len(buf) < len(sig.Samples) {
		buf = core.FixLength(buf, len(sig.Samples))
	}

	y, err := conv.ConvolveMode(buf, sig.Samples, conv.ModeSame)
	if err != nil {
		return fmt.Errorf("irconv: convolve with %s: %w", state.SourceID, err)
	}

	copy(buf, y)
	audio.Samples = buf

	c.log.WithFields(logrus.Fields{
		"function": "Audio",
		"source":   state.SourceID,
		"samples":  len(buf),
		"ir_len":   len(sig.Samples),
	}).Debug("convolved audio")

	return nil
}

// Annotation delays every observation by the state's group delay.
//
// Observations whose delayed onset falls after the end of the track are
// dropped. Observations that would run past the end are truncated to end
// exactly there. Namespace and payloads are left unchanged. On error the
// track keeps its original observations.
func (c *IRConvolution) Annotation(ctx context.Context, ann *annotation.Annotation, state augment.State) error {
	_, span := trace.StartSpan(ctx, "irconv.annotation",
		attribute.String("annotation.namespace", ann.Namespace),
		attribute.Float64("ir.group_delay", state.GroupDelay),
	)
	defer span.End()

	original := ann.Drain()
	shifted, stats, err := shift(original, state.GroupDelay, ann.Duration)
	if err != nil {
		ann.Append(original...)
		err = fmt.Errorf("%s: %w", ann.Namespace, err)
		trace.RecordError(span, err)
		return err
	}
	ann.Append(shifted...)

	c.log.WithFields(logrus.Fields{
		"function":  "Annotation",
		"namespace": ann.Namespace,
		"kept":      len(shifted),
		"dropped":   stats.dropped,
		"truncated": stats.truncated,
		"negative":  stats.negative,
	}).Debug("shifted annotation")

	return nil
}

// shiftStats counts what shift did to a track.
type shiftStats struct {
	dropped   int
	truncated int
	negative  int // kept observations starting before zero
}

func shift(obs []annotation.Observation, delay, duration float64) ([]annotation.Observation, shiftStats, error) {
	out := make([]annotation.Observation, 0, len(obs))
	var stats shiftStats

	for _, o := range obs {
		onset := o.Time + delay
		if onset > duration {
			stats.dropped++
			continue
		}

		length := o.Duration
		if onset+length > duration {
			length = duration - onset
			stats.truncated++
		}

		if !(onset+length <= duration+augment.BoundaryTolerance) {
			return nil, shiftStats{}, fmt.Errorf("%w: time=%g duration=%g track=%g",
				augment.ErrBoundary, onset, length, duration)
		}
		if onset < 0 {
			stats.negative++
		}

		o.Time = onset
		o.Duration = length
		out = append(out, o)
	}

	return out, stats, nil
}
