package stream

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/matt-g-everett/keyframer/preset"
	"github.com/matt-g-everett/keyframer/project"
	"github.com/rs/zerolog/log"
)

// Animated properties of a scene object.
const (
	Position = "position"
	Scale    = "scale"
	Rotation = "rotation"
	Opacity  = "opacity"
	Fill     = "fill"
)

// CoreProperties are the properties keyed by KeyAll and auto-keying.
var CoreProperties = []string{Position, Scale, Rotation, Opacity}

// Scene is the set of live objects and their keyframes. It is not safe for
// concurrent use; the Controller owns it.
type Scene struct {
	elements  []*project.Element
	store     *keyframe.Store
	evaluator *keyframe.Evaluator
}

// NewScene creates a scene over elements and store. A nil store starts empty.
func NewScene(elements []*project.Element, store *keyframe.Store) *Scene {
	s := new(Scene)
	s.elements = elements
	if s.elements == nil {
		s.elements = []*project.Element{}
	}
	s.store = store
	if s.store == nil {
		s.store = keyframe.NewStore()
	}
	s.evaluator = keyframe.NewEvaluator(s.store)
	return s
}

// SceneFromProject restores a project's elements and keyframes.
func SceneFromProject(p *project.Project) (*Scene, error) {
	store, err := p.Restore()
	if err != nil {
		return nil, err
	}
	return NewScene(p.Elements, store), nil
}

// Store exposes the keyframe store.
func (s *Scene) Store() *keyframe.Store {
	return s.store
}

// Elements returns the live objects in draw order.
func (s *Scene) Elements() []*project.Element {
	return s.elements
}

// Object looks up a live object by ID.
func (s *Scene) Object(id string) (*project.Element, bool) {
	for _, el := range s.elements {
		if el.ID == id {
			return el, true
		}
	}
	return nil, false
}

func parseFill(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

func fillValue(c colorful.Color) keyframe.Value {
	return keyframe.RGB(c.R, c.G, c.B)
}

func liveValue(el *project.Element, property string) (keyframe.Value, bool) {
	switch property {
	case Position:
		return keyframe.Point(el.X, el.Y), true
	case Scale:
		return keyframe.Size(el.Width, el.Height), true
	case Rotation:
		return keyframe.Scalar(el.Rotation), true
	case Opacity:
		return keyframe.Scalar(el.Opacity), true
	case Fill:
		return fillValue(parseFill(el.Fill)), true
	}
	return keyframe.Value{}, false
}

func field(v keyframe.Value, name string, fallback float64) float64 {
	if f, ok := v.Field(name); ok {
		return f
	}
	return fallback
}

func scalar(v keyframe.Value, fallback float64) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return fallback
}

// Render resolves every visible object at frame. Properties without
// keyframes keep their live values.
func (s *Scene) Render(frame float64) *Frame {
	f := NewFrame(frame)
	for _, el := range s.elements {
		if !el.IsVisible() {
			continue
		}

		eval := func(property string) keyframe.Value {
			live, _ := liveValue(el, property)
			return s.evaluator.Evaluate(el.ID, property, frame, live)
		}
		pos := eval(Position)
		size := eval(Scale)
		fill := eval(Fill)
		liveFill := parseFill(el.Fill)

		f.Objects = append(f.Objects, ObjectState{
			ID:       el.ID,
			Type:     el.Type,
			X:        field(pos, "x", el.X),
			Y:        field(pos, "y", el.Y),
			Width:    field(size, "width", el.Width),
			Height:   field(size, "height", el.Height),
			Rotation: scalar(eval(Rotation), el.Rotation),
			Opacity:  scalar(eval(Opacity), el.Opacity),
			Fill: colorful.Color{
				R: field(fill, "r", liveFill.R),
				G: field(fill, "g", liveFill.G),
				B: field(fill, "b", liveFill.B),
			}.Clamped(),
		})
	}
	return f
}

func shapeError(property string, v keyframe.Value) error {
	return fmt.Errorf("%w: %s cannot take value %s", keyframe.ErrInvalidArgument, property, v)
}

func requireFields(property string, v keyframe.Value, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		f, ok := v.Field(n)
		if !ok {
			return nil, shapeError(property, v)
		}
		out[i] = f
	}
	if len(v.Keys()) != len(names) {
		return nil, shapeError(property, v)
	}
	return out, nil
}

func applyLive(el *project.Element, property string, v keyframe.Value) error {
	switch property {
	case Position:
		xy, err := requireFields(property, v, "x", "y")
		if err != nil {
			return err
		}
		el.X, el.Y = xy[0], xy[1]
	case Scale:
		wh, err := requireFields(property, v, "width", "height")
		if err != nil {
			return err
		}
		el.Width, el.Height = wh[0], wh[1]
	case Rotation, Opacity:
		f, ok := v.Float()
		if !ok {
			return shapeError(property, v)
		}
		if property == Rotation {
			el.Rotation = f
		} else {
			el.Opacity = f
		}
	case Fill:
		rgb, err := requireFields(property, v, "r", "g", "b")
		if err != nil {
			return err
		}
		el.Fill = colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}.Clamped().Hex()
	default:
		return fmt.Errorf("%w: unknown property %q", keyframe.ErrInvalidArgument, property)
	}
	return nil
}

// SetProperty changes an object's live value. With autoKey on the new value
// is also keyed at the nearest whole frame.
func (s *Scene) SetProperty(objectID, property string, value keyframe.Value, frame float64, autoKey bool) error {
	el, ok := s.Object(objectID)
	if !ok {
		return fmt.Errorf("%w: unknown object %q", keyframe.ErrInvalidArgument, objectID)
	}
	if err := applyLive(el, property, value); err != nil {
		return err
	}
	if !autoKey {
		return nil
	}
	return s.store.AddKeyframe(objectID, property, math.Round(frame), value, keyframe.Linear)
}

// KeyAll keys the core properties of an object from its live values.
func (s *Scene) KeyAll(objectID string, frame float64) error {
	el, ok := s.Object(objectID)
	if !ok {
		return fmt.Errorf("%w: unknown object %q", keyframe.ErrInvalidArgument, objectID)
	}
	for _, prop := range CoreProperties {
		v, _ := liveValue(el, prop)
		if err := s.store.AddKeyframe(objectID, prop, math.Round(frame), v, keyframe.Linear); err != nil {
			return err
		}
	}
	return nil
}

// AddObject appends a live object, keying its core properties when autoKey
// is on.
func (s *Scene) AddObject(el *project.Element, frame float64, autoKey bool) error {
	if el == nil || el.ID == "" {
		return fmt.Errorf("%w: object needs an id", keyframe.ErrInvalidArgument)
	}
	if _, exists := s.Object(el.ID); exists {
		return fmt.Errorf("%w: object %q already exists", keyframe.ErrInvalidArgument, el.ID)
	}
	s.elements = append(s.elements, el)
	log.Debug().Str("object", el.ID).Str("type", el.Type).Msg("Object added")

	if autoKey {
		return s.KeyAll(el.ID, frame)
	}
	return nil
}

// RemoveObject deletes an object and all of its keyframes.
func (s *Scene) RemoveObject(objectID string) {
	for i, el := range s.elements {
		if el.ID == objectID {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			break
		}
	}
	s.store.RemoveObject(objectID)
}

// ApplyPreset adds a preset's keyframes anchored to the object's live state.
func (s *Scene) ApplyPreset(objectID, presetID string, frame float64) error {
	el, ok := s.Object(objectID)
	if !ok {
		return fmt.Errorf("%w: unknown object %q", keyframe.ErrInvalidArgument, objectID)
	}
	target := preset.Target{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height, Rotation: el.Rotation}
	return preset.Apply(s.store, objectID, target, presetID, frame)
}

// Capture writes copies of the scene's objects and keyframes into p.
func (s *Scene) Capture(p *project.Project) {
	p.Elements = make([]*project.Element, len(s.elements))
	for i, el := range s.elements {
		c := *el
		p.Elements[i] = &c
	}
	p.Capture(s.store)
}
