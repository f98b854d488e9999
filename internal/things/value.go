// Package things models a Web Thing: a device with typed, bounded
// properties whose remote writes are queued until the sync loop applies them.
package things

import (
	"encoding/json"
	"fmt"
)

// Type is the JSON type of a property value.
type Type string

// Property value types.
const (
	Boolean Type = "boolean"
	Number  Type = "number"
	String  Type = "string"
)

// Value holds exactly one of a boolean, number or string.
type Value struct {
	kind Type
	b    bool
	n    float64
	s    string
}

// BoolValue wraps a boolean.
func BoolValue(v bool) Value { return Value{kind: Boolean, b: v} }

// NumberValue wraps a number.
func NumberValue(v float64) Value { return Value{kind: Number, n: v} }

// StringValue wraps a string.
func StringValue(v string) Value { return Value{kind: String, s: v} }

// Kind returns the type of the held value.
func (v Value) Kind() Type { return v.kind }

// Bool returns the boolean, or false for other kinds.
func (v Value) Bool() bool { return v.b }

// Number returns the number, or 0 for other kinds.
func (v Value) Number() float64 { return v.n }

// String returns the string, or a formatted rendition for other kinds.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.s
	case Boolean:
		return fmt.Sprint(v.b)
	case Number:
		return fmt.Sprint(v.n)
	default:
		return ""
	}
}

// Interface returns the value as a plain Go value for encoding.
func (v Value) Interface() any {
	switch v.kind {
	case Boolean:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	default:
		return nil
	}
}

// MarshalJSON encodes the held value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// ValueFrom converts a decoded JSON value into a Value of type t.
func ValueFrom(t Type, raw any) (Value, error) {
	switch t {
	case Boolean:
		if b, ok := raw.(bool); ok {
			return BoolValue(b), nil
		}
	case Number:
		switch n := raw.(type) {
		case float64:
			return NumberValue(n), nil
		case int:
			return NumberValue(float64(n)), nil
		case int64:
			return NumberValue(float64(n)), nil
		}
	case String:
		if s, ok := raw.(string); ok {
			return StringValue(s), nil
		}
	}
	return Value{}, fmt.Errorf("want %s, got %T", t, raw)
}
