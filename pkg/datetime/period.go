package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/roomrev/pkg/constants"
)

// PeriodStart returns the first day of the period of the given granularity
// containing t. Weeks are ISO weeks starting on Monday.
func PeriodStart(t time.Time, granularity string) (time.Time, error) {
	d := Truncate(t)
	switch granularity {
	case constants.GranularityDay:
		return d, nil
	case constants.GranularityWeek:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset), nil
	case constants.GranularityMonth:
		return Date(d.Year(), d.Month(), 1), nil
	case constants.GranularityYear:
		return Date(d.Year(), time.January, 1), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported granularity %q", granularity)
	}
}

// NextPeriod returns the start of the period following the one starting at
// start.
func NextPeriod(start time.Time, granularity string) (time.Time, error) {
	switch granularity {
	case constants.GranularityDay:
		return start.AddDate(0, 0, 1), nil
	case constants.GranularityWeek:
		return start.AddDate(0, 0, 7), nil
	case constants.GranularityMonth:
		return start.AddDate(0, 1, 0), nil
	case constants.GranularityYear:
		return start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported granularity %q", granularity)
	}
}

// PeriodKey renders the key of the period starting at start: 2024-01-02 for
// days, 2024-W01 for ISO weeks, 2024-01 for months and 2024 for years.
func PeriodKey(start time.Time, granularity string) string {
	switch granularity {
	case constants.GranularityWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case constants.GranularityMonth:
		return start.Format(constants.MonthLayout)
	case constants.GranularityYear:
		return start.Format(constants.YearLayout)
	default:
		return start.Format(DateLayout)
	}
}

// ShiftYears moves a calendar date by the given number of years. The second
// result is false when the same month and day do not exist in the target
// year (29 February).
func ShiftYears(t time.Time, years int) (time.Time, bool) {
	shifted := Date(t.Year()+years, t.Month(), t.Day())
	return shifted, shifted.Month() == t.Month() && shifted.Day() == t.Day()
}

// ShiftMonths moves a calendar date by the given number of months. The
// second result is false when the day does not exist in the target month.
func ShiftMonths(t time.Time, months int) (time.Time, bool) {
	first := Date(t.Year(), t.Month(), 1).AddDate(0, months, 0)
	shifted := Date(first.Year(), first.Month(), t.Day())
	return shifted, shifted.Month() == first.Month()
}

// SameDayOfYear returns the date with the same ordinal day in the given year.
// The second result is false when the ordinal does not exist (day 366).
func SameDayOfYear(t time.Time, year int) (time.Time, bool) {
	shifted := Date(year, time.January, 1).AddDate(0, 0, t.YearDay()-1)
	return shifted, shifted.Year() == year
}
