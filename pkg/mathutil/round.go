// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Negative zero becomes zero.
func Round(val float64) float64 {
	r := math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
	if r == 0 {
		return 0
	}
	return r
}

// RoundTo rounds a value to the given number of decimal places. Negative
// zero becomes zero.
func RoundTo(val float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	r := math.Round(val*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

// RoundValue rounds a defined metric value to the given number of decimal
// places and leaves an undefined one untouched.
func RoundValue(v metric.Value, places int) metric.Value {
	f, ok := v.Float()
	if !ok {
		return metric.Undefined
	}
	return metric.Of(RoundTo(f, places))
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// ValueWithinTolerance is WithinTolerance for metric values; two undefined
// values are considered equal.
func ValueWithinTolerance(a, b metric.Value, tolerance float64) bool {
	fa, okA := a.Float()
	fb, okB := b.Float()
	if okA != okB {
		return false
	}
	return !okA || WithinTolerance(fa, fb, tolerance)
}
