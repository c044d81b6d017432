// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"time"

	"github.com/iwvelando/roomrev/pkg/constants"
)

func oneOf(kind, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("expected %s of %v, got %q", kind, allowed, value)
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	return oneOf("output format", format,
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON)
}

// ValidateGranularity checks the bucket size.
func ValidateGranularity(granularity string) error {
	return oneOf("granularity", granularity,
		constants.GranularityDay, constants.GranularityWeek, constants.GranularityMonth, constants.GranularityYear)
}

// ValidateComparison checks the comparison mode and that it is defined for
// the granularity. Month-over-month needs daily or monthly buckets.
func ValidateComparison(mode, granularity string) error {
	if err := oneOf("comparison", mode,
		constants.ComparisonYoY, constants.ComparisonMoM, constants.ComparisonNone); err != nil {
		return err
	}
	if mode == constants.ComparisonMoM &&
		granularity != constants.GranularityDay && granularity != constants.GranularityMonth {
		return fmt.Errorf("%s comparison needs %s or %s granularity, got %s",
			mode, constants.GranularityDay, constants.GranularityMonth, granularity)
	}
	return nil
}

// ValidatePaceAlignment checks the pace alignment mode.
func ValidatePaceAlignment(mode string) error {
	return oneOf("pace alignment", mode, constants.PaceAlignSameDate, constants.PaceAlignDayOfYear)
}

// ValidateDimension checks a grouping dimension. Empty disables grouping.
func ValidateDimension(dimension string) error {
	if dimension == "" {
		return nil
	}
	return oneOf("dimension", dimension,
		constants.DimensionChannel, constants.DimensionRatePlan, constants.DimensionMarketSegment, constants.DimensionRoomType)
}

// ParseDateBound parses an optional YYYY-MM-DD bound. Empty gives the zero
// time, which leaves the range open.
func ParseDateBound(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(constants.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q: %w", name, value, err)
	}
	return t, nil
}
