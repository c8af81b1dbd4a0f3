package keyframe

import "errors"

var (
	// ErrInvalidArgument is returned for non-finite frames, unknown easings and
	// structured values whose keys do not line up.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoKeyframes signals that a property has no animation defined. It is an
	// expected state, not a failure.
	ErrNoKeyframes = errors.New("no keyframes")
)
