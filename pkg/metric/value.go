// Package metric provides Value, a float that may be undefined.
//
// An undefined Value is the result of a division by zero or of a missing
// operand. It is not an error and it is never zero: arithmetic on an
// undefined Value yields an undefined Value, and presentation code renders it
// as "N/A".
package metric

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// NotAvailable is the text rendering of an undefined Value.
const NotAvailable = "N/A"

// Value is an optional float64.
type Value struct {
	v  float64
	ok bool
}

// Undefined is the undefined Value.
var Undefined = Value{}

// Of wraps a float64. NaN and infinities are undefined.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Value{v: v, ok: true}
}

// Zero is a defined zero.
func Zero() Value {
	return Value{ok: true}
}

// Defined reports whether the value holds a number.
func (x Value) Defined() bool {
	return x.ok
}

// Float returns the number and whether it is defined.
func (x Value) Float() (float64, bool) {
	return x.v, x.ok
}

// OrZero returns the value, substituting a defined zero when undefined.
// Callers use it only for operands where "not reported" means "none".
func (x Value) OrZero() Value {
	if !x.ok {
		return Zero()
	}
	return x
}

// String renders the value, "N/A" when undefined.
func (x Value) String() string {
	if !x.ok {
		return NotAvailable
	}
	return strconv.FormatFloat(x.v, 'f', -1, 64)
}

// Equal reports whether both values are undefined or both hold the same number.
func (x Value) Equal(y Value) bool {
	if x.ok != y.ok {
		return false
	}
	return !x.ok || x.v == y.v
}

// MarshalJSON encodes undefined as null.
func (x Value) MarshalJSON() ([]byte, error) {
	if !x.ok {
		return []byte("null"), nil
	}
	return json.Marshal(x.v)
}

// UnmarshalJSON decodes null as undefined.
func (x *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*x = Undefined
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*x = Of(f)
	return nil
}

// Add returns a+b.
func Add(a, b Value) Value {
	if !a.ok || !b.ok {
		return Undefined
	}
	return Of(a.v + b.v)
}

// Sub returns a-b.
func Sub(a, b Value) Value {
	if !a.ok || !b.ok {
		return Undefined
	}
	return Of(a.v - b.v)
}

// Mul returns a*b.
func Mul(a, b Value) Value {
	if !a.ok || !b.ok {
		return Undefined
	}
	return Of(a.v * b.v)
}

// Div returns a/b, undefined when b is zero.
func Div(a, b Value) Value {
	if !a.ok || !b.ok || b.v == 0 {
		return Undefined
	}
	return Of(a.v / b.v)
}

// Sum adds all values; any undefined operand makes the sum undefined.
func Sum(values ...Value) Value {
	total := Zero()
	for _, v := range values {
		total = Add(total, v)
	}
	return total
}

// Mean averages the values. It is undefined for an empty slice or when any
// value is undefined.
func Mean(values []Value) Value {
	if len(values) == 0 {
		return Undefined
	}
	return Div(Sum(values...), Of(float64(len(values))))
}
