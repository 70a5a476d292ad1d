// Package annotation holds time-stamped observation tracks that stay aligned
// with an audio signal while it is deformed.
package annotation

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by annotation operations.
var (
	ErrInvalidDuration = errors.New("annotation: duration must be finite and >= 0")
	ErrInvalidWindow   = errors.New("annotation: invalid slice window")
	ErrOutOfBounds     = errors.New("annotation: observation outside track")
)

// Observation is one time-stamped event. Value and Confidence are opaque
// payloads carried through deformation unchanged.
type Observation struct {
	Time       float64 `json:"time"`
	Duration   float64 `json:"duration"`
	Value      any     `json:"value"`
	Confidence any     `json:"confidence"`
}

// End returns Time + Duration.
func (o Observation) End() float64 {
	return o.Time + o.Duration
}

// Annotation is an insertion-ordered set of observations over a track of
// fixed Duration seconds.
type Annotation struct {
	Namespace string
	Duration  float64

	obs []Observation
}

// New returns an empty annotation.
func New(namespace string, duration float64) *Annotation {
	return &Annotation{Namespace: namespace, Duration: duration}
}

// Len returns the number of observations.
func (a *Annotation) Len() int {
	return len(a.obs)
}

// Observations returns a copy of the observations in insertion order.
func (a *Annotation) Observations() []Observation {
	return append([]Observation(nil), a.obs...)
}

// Drain removes and returns every observation. The caller owns the result.
func (a *Annotation) Drain() []Observation {
	out := a.obs
	a.obs = nil
	return out
}

// Append adds observations in order.
func (a *Annotation) Append(obs ...Observation) {
	a.obs = append(a.obs, obs...)
}

// Clone returns a copy that shares no observation storage with a. Payloads
// are copied by value.
func (a *Annotation) Clone() *Annotation {
	c := *a
	c.obs = a.Observations()
	return &c
}

// Slice returns a new annotation covering [start, end] of a, with times
// re-based so that start maps to 0.
//
// With strict set only observations lying entirely inside the window are
// kept. Otherwise overlapping observations are clipped to the window.
func (a *Annotation) Slice(start, end float64, strict bool) (*Annotation, error) {
	if math.IsNaN(start) || math.IsNaN(end) || start < 0 || end <= start {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidWindow, start, end)
	}

	end = min(end, a.Duration)
	out := New(a.Namespace, max(0, end-start))

	for _, o := range a.obs {
		keep := o.Time >= start && o.End() <= end
		if !keep && !strict {
			keep = o.Time < end && o.End() > start
		}
		if !keep {
			continue
		}

		t0 := max(o.Time, start)
		t1 := min(o.End(), end)
		o.Time = t0 - start
		o.Duration = max(0, t1-t0)
		out.obs = append(out.obs, o)
	}

	return out, nil
}

// Validate checks the duration and that every observation lies within
// [0, Duration] up to tol seconds. NaN times and durations are rejected.
func (a *Annotation) Validate(tol float64) error {
	if math.IsNaN(a.Duration) || math.IsInf(a.Duration, 0) || a.Duration < 0 {
		return fmt.Errorf("%w: %g", ErrInvalidDuration, a.Duration)
	}

	for i, o := range a.obs {
		if !(o.Time >= -tol) || !(o.Duration >= 0) || !(o.End() <= a.Duration+tol) {
			return fmt.Errorf("%w: #%d time=%g duration=%g track=%g",
				ErrOutOfBounds, i, o.Time, o.Duration, a.Duration)
		}
	}

	return nil
}
