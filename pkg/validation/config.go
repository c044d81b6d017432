package validation

import (
	"fmt"

	"github.com/iwvelando/roomrev/pkg/constants"
)

// ConfigValidator checks analysis settings that are valid on their own but
// are unlikely to be what the user meant.
type ConfigValidator struct {
	Granularity    string
	Comparison     string
	PriorFile      string
	Dimension      string
	TopN           int
	RollingWindows []int
	From           string
	To             string
}

// ValidateAll returns a warning for each suspicious setting.
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if cv.Comparison == constants.ComparisonYoY && cv.PriorFile == "" {
		warnings = append(warnings,
			"yoy comparison without a prior file only pairs periods found within the input")
	}
	if cv.Comparison == constants.ComparisonMoM && cv.PriorFile != "" {
		warnings = append(warnings,
			fmt.Sprintf("prior file %s is only used for pace under mom comparison", cv.PriorFile))
	}

	if cv.Dimension == "" && cv.TopN > 0 {
		warnings = append(warnings, "topN has no effect without a dimension")
	}

	seen := make(map[int]bool)
	for _, w := range cv.RollingWindows {
		if w == 1 {
			warnings = append(warnings, fmt.Sprintf("rolling window of 1 %s repeats the bucket values", cv.Granularity))
		}
		if seen[w] {
			warnings = append(warnings, fmt.Sprintf("rolling window %d is listed more than once", w))
		}
		seen[w] = true
	}

	from, errFrom := ParseDateBound("from", cv.From)
	to, errTo := ParseDateBound("to", cv.To)
	if errFrom == nil && errTo == nil && !from.IsZero() && !to.IsZero() && from.After(to) {
		warnings = append(warnings,
			fmt.Sprintf("from date %s is after to date %s, no records will be analyzed", cv.From, cv.To))
	}

	return warnings
}
