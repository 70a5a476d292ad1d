// Package augment defines the deformer contract used to augment audio
// together with its time-aligned annotations.
//
// A Deformer enumerates deformation states, then applies one state to an
// audio buffer and to each annotation track. Transform drives that cycle and
// yields one independent copy of the input per state.
package augment

import (
	"context"
	"errors"
	"iter"

	"github.com/cwbudde/algo-augment/augment/annotation"
)

// Error kinds shared by all deformers. Concrete causes stay wrapped, so
// errors.Is matches both the kind and the cause.
var (
	ErrConfiguration = errors.New("augment: invalid configuration")
	ErrLoad          = errors.New("augment: load failed")
	ErrEstimation    = errors.New("augment: estimation failed")
	ErrBoundary      = errors.New("augment: observation out of bounds")
)

// BoundaryTolerance is the slack in seconds allowed when checking that a
// deformed observation ends within its track.
const BoundaryTolerance = 1e-9

// State is one deformation parameter set. It is created by Deformer.States
// and never mutated afterwards.
type State struct {
	// SourceID names the impulse response the state was derived from.
	SourceID string
	// GroupDelay is the estimated propagation delay in seconds.
	GroupDelay float64
}

// AudioContext is the mono signal being deformed.
type AudioContext struct {
	Samples    []float64
	SampleRate float64
}

// Deformer produces deformation states and applies them.
type Deformer interface {
	// States enumerates the states for audio at sampleRate. Every range
	// over the sequence starts afresh. A failure is yielded once with a
	// zero State and ends the sequence.
	States(ctx context.Context, sampleRate float64) iter.Seq2[State, error]

	// Audio applies state to audio in place.
	Audio(ctx context.Context, audio *AudioContext, state State) error

	// Annotation applies state to one annotation track in place.
	Annotation(ctx context.Context, ann *annotation.Annotation, state State) error
}

// Item is an audio signal with its annotation tracks.
type Item struct {
	// ID identifies the deformation that produced the item. It is empty
	// for source items.
	ID          string
	State       State
	Audio       AudioContext
	Annotations []*annotation.Annotation
}

// Clone returns a deep copy of it.
func (it *Item) Clone() *Item {
	c := &Item{
		ID:    it.ID,
		State: it.State,
		Audio: AudioContext{
			Samples:    append([]float64(nil), it.Audio.Samples...),
			SampleRate: it.Audio.SampleRate,
		},
		Annotations: make([]*annotation.Annotation, len(it.Annotations)),
	}
	for i, a := range it.Annotations {
		c.Annotations[i] = a.Clone()
	}
	return c
}
