// Package format renders metric values for people. Undefined values render
// as "N/A".
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/mathutil"
	"github.com/iwvelando/roomrev/pkg/metric"
)

var printer = message.NewPrinter(language.English)

// Amount renders a money amount with thousands separators and two decimals (e.g., "-1,234.56").
func Amount(v metric.Value) string {
	f, ok := v.Float()
	if !ok {
		return metric.NotAvailable
	}
	return printer.Sprintf("%.2f", mathutil.Round(f))
}

// SignedAmount is Amount with an explicit sign on positive values.
func SignedAmount(v metric.Value) string {
	f, ok := v.Float()
	if !ok {
		return metric.NotAvailable
	}
	return printer.Sprintf("%+.2f", mathutil.Round(f))
}

// Count renders a room count, without decimals when it is whole.
func Count(v metric.Value) string {
	f, ok := v.Float()
	if !ok {
		return metric.NotAvailable
	}
	if f == math.Trunc(f) {
		return printer.Sprintf("%.0f", f)
	}
	return printer.Sprintf("%.2f", mathutil.Round(f))
}

// Percent renders a ratio as a percentage (0.8 is "80.00%").
func Percent(v metric.Value) string {
	f, ok := v.Float()
	if !ok {
		return metric.NotAvailable
	}
	return printer.Sprintf("%.2f%%", f*constants.PercentageMultiplier)
}

// SignedPercent is Percent with an explicit sign on positive values.
func SignedPercent(v metric.Value) string {
	f, ok := v.Float()
	if !ok {
		return metric.NotAvailable
	}
	return printer.Sprintf("%+.2f%%", f*constants.PercentageMultiplier)
}
