package stream

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bytedance/sonic"
	"github.com/lucasb-eyer/go-colorful"
)

// ObjectState is one object resolved at a frame.
type ObjectState struct {
	ID       string
	Type     string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
	Opacity  float64
	Fill     colorful.Color
}

// Frame represents every visible object of a scene at one timeline frame.
type Frame struct {
	Number  float64
	Objects []ObjectState
}

// NewFrame creates a new Frame instance.
func NewFrame(number float64) *Frame {
	f := new(Frame)
	f.Number = number
	f.Objects = []ObjectState{}
	return f
}

// Object finds an object's state by ID.
func (f *Frame) Object(id string) (ObjectState, bool) {
	for _, o := range f.Objects {
		if o.ID == id {
			return o, true
		}
	}
	return ObjectState{}, false
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InterpolateFrame merges two frames. Objects are matched by ID; an object
// present in only one frame fades in or out.
func (f *Frame) InterpolateFrame(f2 *Frame, transitionPoint float64) *Frame {
	out := NewFrame(f2.Number)
	for _, a := range f.Objects {
		b, ok := f2.Object(a.ID)
		if !ok {
			a.Opacity *= 1 - transitionPoint
			out.Objects = append(out.Objects, a)
			continue
		}
		out.Objects = append(out.Objects, ObjectState{
			ID:       b.ID,
			Type:     b.Type,
			X:        lerp(a.X, b.X, transitionPoint),
			Y:        lerp(a.Y, b.Y, transitionPoint),
			Width:    lerp(a.Width, b.Width, transitionPoint),
			Height:   lerp(a.Height, b.Height, transitionPoint),
			Rotation: lerp(a.Rotation, b.Rotation, transitionPoint),
			Opacity:  lerp(a.Opacity, b.Opacity, transitionPoint),
			Fill:     a.Fill.BlendHcl(b.Fill, transitionPoint).Clamped(),
		})
	}
	for _, b := range f2.Objects {
		if _, ok := f.Object(b.ID); !ok {
			b.Opacity *= transitionPoint
			out.Objects = append(out.Objects, b)
		}
	}

	return out
}

// MarshalBinary converts a Frame into compact little-endian binary data:
// frame number (float32), object count (uint16), then per object an ID
// (uint8 length + bytes), x, y, width, height, rotation, opacity (float32)
// and an RGB fill.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	if len(f.Objects) > math.MaxUint16 {
		return nil, fmt.Errorf("too many objects in frame: %d", len(f.Objects))
	}

	data = make([]byte, 6, 6+len(f.Objects)*32)
	binary.LittleEndian.PutUint32(data, math.Float32bits(float32(f.Number)))
	binary.LittleEndian.PutUint16(data[4:], uint16(len(f.Objects)))
	for _, o := range f.Objects {
		if len(o.ID) > math.MaxUint8 {
			return nil, fmt.Errorf("object id too long: %q", o.ID)
		}
		data = append(data, byte(len(o.ID)))
		data = append(data, o.ID...)
		for _, v := range []float64{o.X, o.Y, o.Width, o.Height, o.Rotation, o.Opacity} {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v)))
		}
		r, g, b := o.Fill.Clamped().RGB255()
		data = append(data, r, g, b)
	}

	return data, nil
}

type objectJSON struct {
	ID       string  `json:"id"`
	Type     string  `json:"type,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
	Fill     string  `json:"fill"`
}

type frameJSON struct {
	Frame   float64      `json:"frame"`
	Objects []objectJSON `json:"objects"`
}

// MarshalJSON renders the frame for browser clients, with hex fills.
func (f *Frame) MarshalJSON() ([]byte, error) {
	out := frameJSON{Frame: f.Number, Objects: make([]objectJSON, len(f.Objects))}
	for i, o := range f.Objects {
		out.Objects[i] = objectJSON{
			ID:       o.ID,
			Type:     o.Type,
			X:        o.X,
			Y:        o.Y,
			Width:    o.Width,
			Height:   o.Height,
			Rotation: o.Rotation,
			Opacity:  o.Opacity,
			Fill:     o.Fill.Clamped().Hex(),
		}
	}
	return sonic.ConfigStd.Marshal(out)
}
