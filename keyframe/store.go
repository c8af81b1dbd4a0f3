package keyframe

import (
	"fmt"
	"math"
	"sort"
)

// Keyframe pins a property's value at a frame. Easing names the curve used on
// the segment that leaves this keyframe.
type Keyframe struct {
	Frame  float64
	Value  Value
	Easing string
}

// Store holds the keyframe tracks of every animated object, keyed by object ID
// and then property name. Each track is sorted by frame with no duplicates.
type Store struct {
	objects map[string]map[string][]Keyframe
}

// NewStore creates an empty Store.
func NewStore() *Store {
	s := new(Store)
	s.objects = make(map[string]map[string][]Keyframe)
	return s
}

func validFrame(frame float64) bool {
	return !math.IsNaN(frame) && !math.IsInf(frame, 0) && frame >= 0
}

// search returns the index of the first keyframe at or after frame.
func search(track []Keyframe, frame float64) int {
	return sort.Search(len(track), func(i int) bool { return track[i].Frame >= frame })
}

// AddKeyframe inserts a keyframe, replacing any keyframe already at frame.
func (s *Store) AddKeyframe(objectID, property string, frame float64, value Value, easing string) error {
	if objectID == "" || property == "" {
		return fmt.Errorf("%w: object and property are required", ErrInvalidArgument)
	}
	if !validFrame(frame) {
		return fmt.Errorf("%w: frame %v", ErrInvalidArgument, frame)
	}
	if !value.finite() {
		return fmt.Errorf("%w: value %v", ErrInvalidArgument, value)
	}
	if easing == "" {
		easing = Linear
	}
	if _, ok := Ease(easing); !ok {
		return fmt.Errorf("%w: unknown easing %q", ErrInvalidArgument, easing)
	}

	props, ok := s.objects[objectID]
	if !ok {
		props = make(map[string][]Keyframe)
		s.objects[objectID] = props
	}

	kf := Keyframe{Frame: frame, Value: value, Easing: easing}
	track := props[property]
	i := search(track, frame)
	if i < len(track) && track[i].Frame == frame {
		track[i] = kf
	} else {
		track = append(track, Keyframe{})
		copy(track[i+1:], track[i:])
		track[i] = kf
	}
	props[property] = track

	return nil
}

// RemoveKeyframe deletes the keyframe at exactly frame, if there is one. Empty
// tracks and objects are dropped.
func (s *Store) RemoveKeyframe(objectID, property string, frame float64) {
	props, ok := s.objects[objectID]
	if !ok {
		return
	}
	track := props[property]
	i := search(track, frame)
	if i == len(track) || track[i].Frame != frame {
		return
	}

	track = append(track[:i], track[i+1:]...)
	if len(track) == 0 {
		delete(props, property)
	} else {
		props[property] = track
	}
	if len(props) == 0 {
		delete(s.objects, objectID)
	}
}

// HasKeyframeAt reports whether a keyframe sits at exactly frame.
func (s *Store) HasKeyframeAt(objectID, property string, frame float64) bool {
	_, ok := s.KeyframeValue(objectID, property, frame)
	return ok
}

// KeyframeValue returns the value keyed at exactly frame. ok is false when
// there is none.
func (s *Store) KeyframeValue(objectID, property string, frame float64) (v Value, ok bool) {
	track := s.objects[objectID][property]
	i := search(track, frame)
	if i == len(track) || track[i].Frame != frame {
		return Value{}, false
	}
	return track[i].Value, true
}

// RemoveObject drops every track belonging to objectID.
func (s *Store) RemoveObject(objectID string) {
	delete(s.objects, objectID)
}

// Track returns a copy of the keyframes for a property, oldest frame first.
func (s *Store) Track(objectID, property string) []Keyframe {
	track := s.objects[objectID][property]
	out := make([]Keyframe, len(track))
	copy(out, track)
	return out
}

// Objects lists the IDs of objects that have at least one keyframe.
func (s *Store) Objects() []string {
	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Properties lists the animated properties of an object.
func (s *Store) Properties(objectID string) []string {
	props := s.objects[objectID]
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FrameMarkers returns every frame at which the object has a keyframe on any
// property, ascending and deduplicated.
func (s *Store) FrameMarkers(objectID string) []float64 {
	seen := make(map[float64]bool)
	frames := []float64{}
	for _, track := range s.objects[objectID] {
		for _, kf := range track {
			if !seen[kf.Frame] {
				seen[kf.Frame] = true
				frames = append(frames, kf.Frame)
			}
		}
	}
	sort.Float64s(frames)
	return frames
}

// Len returns the total number of keyframes held.
func (s *Store) Len() int {
	n := 0
	for _, props := range s.objects {
		for _, track := range props {
			n += len(track)
		}
	}
	return n
}
