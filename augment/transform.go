package augment

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cwbudde/algo-augment/internal/trace"
)

type transformConfig struct {
	logger logrus.FieldLogger
}

// TransformOption configures Transform.
type TransformOption func(*transformConfig)

// WithTransformLogger sets the logger used by Transform.
func WithTransformLogger(l logrus.FieldLogger) TransformOption {
	return func(c *transformConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Transform yields one deformed deep copy of item per state of d. The input
// item is never modified.
//
// Each state is applied to the audio once and to every annotation track
// once. Iteration stops at the first error, which is yielded with a nil item.
func Transform(ctx context.Context, d Deformer, item *Item, opts ...TransformOption) iter.Seq2[*Item, error] {
	cfg := transformConfig{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(yield func(*Item, error) bool) {
		for state, err := range d.States(ctx, item.Audio.SampleRate) {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(nil, err)
				return
			}

			out, err := apply(ctx, d, item, state, cfg.logger)
			if !yield(out, err) || err != nil {
				return
			}
		}
	}
}

func apply(ctx context.Context, d Deformer, item *Item, state State, log logrus.FieldLogger) (*Item, error) {
	id := uuid.NewString()

	ctx, span := trace.StartSpan(ctx, "augment.transform",
		attribute.String("deformation.id", id),
		attribute.String("ir.source", state.SourceID),
		attribute.Float64("ir.group_delay", state.GroupDelay),
	)
	defer span.End()

	entry := log.WithFields(logrus.Fields{
		"function":    "Transform",
		"deformation": id,
		"source":      state.SourceID,
	})

	out := item.Clone()
	out.ID = id
	out.State = state

	if err := d.Audio(ctx, &out.Audio, state); err != nil {
		trace.RecordError(span, err)
		return nil, fmt.Errorf("augment: deformation %s audio: %w", id, err)
	}

	for i, ann := range out.Annotations {
		if err := d.Annotation(ctx, ann, state); err != nil {
			trace.RecordError(span, err)
			return nil, fmt.Errorf("augment: deformation %s annotation %d (%s): %w", id, i, ann.Namespace, err)
		}
	}

	entry.WithField("tracks", len(out.Annotations)).Debug("deformation applied")

	return out, nil
}
