package things

import "math"

// Property is one named, typed attribute of a device.
type Property struct {
	Name         string
	Title        string
	Description  string
	Type         Type
	SemanticType string
	Minimum      *float64
	Maximum      *float64
	ReadOnly     bool

	value Value
}

// Bounds returns a pointer pair for Minimum and Maximum.
func Bounds(lo, hi float64) (*float64, *float64) {
	return &lo, &hi
}

// coerce validates v against the property's type and clamps numbers into
// the declared bounds. NaN is rejected.
func (p *Property) coerce(v Value) (Value, error) {
	if v.Kind() != p.Type {
		return Value{}, &PropertyError{Code: CodeTypeMismatch, Property: p.Name, Detail: "want " + string(p.Type)}
	}
	if p.Type != Number {
		return v, nil
	}

	n := v.Number()
	if math.IsNaN(n) {
		return Value{}, &PropertyError{Code: CodeTypeMismatch, Property: p.Name, Detail: "NaN"}
	}
	if p.Minimum != nil && n < *p.Minimum {
		n = *p.Minimum
	}
	if p.Maximum != nil && n > *p.Maximum {
		n = *p.Maximum
	}
	return NumberValue(n), nil
}
