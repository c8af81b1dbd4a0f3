package keyframe

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/bytedance/sonic"
)

// Value is the payload of a keyframe: either a single number or a flat set of
// named numeric components such as a point or a width/height pair.
type Value struct {
	scalar float64
	fields map[string]float64
}

// Scalar creates a numeric Value.
func Scalar(v float64) Value {
	return Value{scalar: v}
}

// Fields creates a structured Value. The map is copied.
func Fields(m map[string]float64) Value {
	fields := make(map[string]float64, len(m))
	for k, v := range m {
		fields[k] = v
	}
	return Value{fields: fields}
}

// Point creates an {x, y} Value.
func Point(x, y float64) Value {
	return Value{fields: map[string]float64{"x": x, "y": y}}
}

// Size creates a {width, height} Value.
func Size(width, height float64) Value {
	return Value{fields: map[string]float64{"width": width, "height": height}}
}

// RGB creates an {r, g, b} Value with components in [0, 1].
func RGB(r, g, b float64) Value {
	return Value{fields: map[string]float64{"r": r, "g": g, "b": b}}
}

// IsScalar reports whether v holds a single number.
func (v Value) IsScalar() bool {
	return v.fields == nil
}

// Float returns the scalar payload. ok is false for structured values.
func (v Value) Float() (f float64, ok bool) {
	if v.fields != nil {
		return 0, false
	}
	return v.scalar, true
}

// Field returns a named component of a structured value.
func (v Value) Field(name string) (f float64, ok bool) {
	f, ok = v.fields[name]
	return f, ok
}

// Keys returns the component names of a structured value in sorted order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the components of a structured value, or nil.
func (v Value) Map() map[string]float64 {
	if v.fields == nil {
		return nil
	}
	out := make(map[string]float64, len(v.fields))
	for k, f := range v.fields {
		out[k] = f
	}
	return out
}

// Equal reports whether two values have the same shape and identical numbers.
func (v Value) Equal(o Value) bool {
	if v.IsScalar() != o.IsScalar() {
		return false
	}
	if v.IsScalar() {
		return v.scalar == o.scalar
	}
	if len(v.fields) != len(o.fields) {
		return false
	}
	for k, f := range v.fields {
		g, ok := o.fields[k]
		if !ok || f != g {
			return false
		}
	}
	return true
}

func (v Value) finite() bool {
	if v.fields == nil {
		return !math.IsNaN(v.scalar) && !math.IsInf(v.scalar, 0)
	}
	for _, f := range v.fields {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if v.fields == nil {
		return fmt.Sprintf("%g", v.scalar)
	}
	return fmt.Sprintf("%v", v.fields)
}

// Lerp blends a towards b by progress. Scalars blend directly; structured
// values blend per component and must carry the same keys.
func Lerp(a, b Value, progress float64) (Value, error) {
	if a.IsScalar() != b.IsScalar() {
		return Value{}, fmt.Errorf("%w: cannot blend %v with %v", ErrInvalidArgument, a, b)
	}
	if a.IsScalar() {
		return Scalar(a.scalar + (b.scalar-a.scalar)*progress), nil
	}

	if len(a.fields) != len(b.fields) {
		return Value{}, fmt.Errorf("%w: component mismatch %v vs %v", ErrInvalidArgument, a.Keys(), b.Keys())
	}
	out := make(map[string]float64, len(a.fields))
	for k, from := range a.fields {
		to, ok := b.fields[k]
		if !ok {
			return Value{}, fmt.Errorf("%w: component %q missing from %v", ErrInvalidArgument, k, b)
		}
		out[k] = from + (to-from)*progress
	}
	return Value{fields: out}, nil
}

// MarshalJSON encodes a scalar as a bare number and a structured value as an
// object of numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.fields == nil {
		return sonic.ConfigStd.Marshal(v.scalar)
	}
	return sonic.ConfigStd.Marshal(v.fields)
}

// UnmarshalJSON accepts either a number or an object of numbers.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fmt.Errorf("%w: null value", ErrInvalidArgument)
	}

	var f float64
	if err := sonic.ConfigStd.Unmarshal(data, &f); err == nil {
		*v = Scalar(f)
		return nil
	}

	var m map[string]float64
	if err := sonic.ConfigStd.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%w: value must be a number or an object of numbers: %s", ErrInvalidArgument, data)
	}
	*v = Value{fields: m}
	return nil
}
