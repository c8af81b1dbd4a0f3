package keyframe

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// Evaluator resolves animated property values from a Store.
type Evaluator struct {
	store *Store
}

// NewEvaluator creates an Evaluator reading from store.
func NewEvaluator(store *Store) *Evaluator {
	e := new(Evaluator)
	e.store = store
	return e
}

// Lookup computes a property's value at frame. Frames before the first
// keyframe hold the first value and frames after the last hold the last value.
// Between two keyframes the earlier one's easing shapes the blend.
func (e *Evaluator) Lookup(objectID, property string, frame float64) (Value, error) {
	if math.IsNaN(frame) || math.IsInf(frame, 0) {
		return Value{}, fmt.Errorf("%w: frame %v", ErrInvalidArgument, frame)
	}

	track := e.store.objects[objectID][property]
	if len(track) == 0 {
		return Value{}, ErrNoKeyframes
	}

	var prev, next *Keyframe
	for i := range track {
		if track[i].Frame <= frame {
			prev = &track[i]
		}
		if track[i].Frame >= frame && next == nil {
			next = &track[i]
		}
	}

	if prev != nil && prev.Frame == frame {
		return prev.Value, nil
	}
	if prev == nil {
		return next.Value, nil
	}
	if next == nil {
		return prev.Value, nil
	}

	raw := (frame - prev.Frame) / (next.Frame - prev.Frame)
	fn, ok := Ease(prev.Easing)
	if !ok {
		fn = builtin[Linear]
	}

	return Lerp(prev.Value, next.Value, fn(raw))
}

// Evaluate is Lookup for the render loop: it never fails. A property without
// keyframes, or one whose keyframes cannot be blended, yields fallback.
func (e *Evaluator) Evaluate(objectID, property string, frame float64, fallback Value) Value {
	v, err := e.Lookup(objectID, property, frame)
	if err != nil {
		if !errors.Is(err, ErrNoKeyframes) {
			log.Debug().Err(err).Str("object", objectID).Str("property", property).
				Float64("frame", frame).Msg("Falling back to live value")
		}
		return fallback
	}
	return v
}
