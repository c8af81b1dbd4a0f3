// Package preset holds canned keyframe sequences that animate an object
// relative to its current position, size and rotation.
package preset

import (
	"fmt"
	"strings"

	"github.com/matt-g-everett/keyframer/keyframe"
)

// Categories, in catalog order.
const (
	Transform = "transform"
	Styles    = "styles"
	Reveal    = "reveal"
)

// Target is the live state a preset is anchored to.
type Target struct {
	X, Y          float64
	Width, Height float64
	Rotation      float64
}

// A Step is one keyframe of a preset, placed Offset frames after the frame the
// preset is applied at.
type Step struct {
	Property string
	Offset   float64
	Easing   string
	Value    func(t Target) keyframe.Value
}

// Preset is a named keyframe sequence.
type Preset struct {
	ID          string
	Name        string
	Description string
	Category    string
	Steps       []Step
}

// Keyframe is a preset step resolved against a target and start frame.
type Keyframe struct {
	Property string
	Frame    float64
	Value    keyframe.Value
	Easing   string
}

// Properties lists the distinct properties the preset animates.
func (p Preset) Properties() []string {
	seen := map[string]bool{}
	props := []string{}
	for _, s := range p.Steps {
		if !seen[s.Property] {
			seen[s.Property] = true
			props = append(props, s.Property)
		}
	}
	return props
}

// Keyframes resolves the preset for target starting at frame.
func (p Preset) Keyframes(target Target, frame float64) []Keyframe {
	out := make([]Keyframe, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = Keyframe{
			Property: s.Property,
			Frame:    frame + s.Offset,
			Value:    s.Value(target),
			Easing:   s.Easing,
		}
	}
	return out
}

// Lookup finds a preset by ID.
func Lookup(id string) (Preset, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Catalog returns every preset in display order.
func Catalog() []Preset {
	out := make([]Preset, len(catalog))
	copy(out, catalog)
	return out
}

// Search returns presets in category (empty for all) whose name or
// description contains query, ignoring case.
func Search(category, query string) []Preset {
	query = strings.ToLower(query)
	out := []Preset{}
	for _, p := range catalog {
		if category != "" && p.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Apply adds the preset's keyframes for objectID to store, replacing any
// keyframes already at the same frames.
func Apply(store *keyframe.Store, objectID string, target Target, id string, frame float64) error {
	p, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", keyframe.ErrInvalidArgument, id)
	}
	for _, kf := range p.Keyframes(target, frame) {
		if err := store.AddKeyframe(objectID, kf.Property, kf.Frame, kf.Value, kf.Easing); err != nil {
			return fmt.Errorf("preset %s: %w", id, err)
		}
	}
	return nil
}
