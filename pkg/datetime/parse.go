// Package datetime provides date and time utility functions.
//
// All dates handled by roomrev are calendar dates: they are represented as
// time.Time values at midnight UTC.
package datetime

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/roomrev/pkg/constants"
)

const (
	// DateLayout is the canonical calendar date format.
	DateLayout = constants.DateLayout
)

var (
	// 2024-01-02, 2024/1/2, 2024.01.02, 24-1-2, optionally followed by a time part.
	ymdPattern = regexp.MustCompile(`^(\d{4}|\d{2})([-/.])(\d{1,2})([-/.])(\d{1,2})(?:[T\s].*)?$`)

	// 2024年1月2日
	cjkPattern = regexp.MustCompile(`^(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日?$`)

	// 20240102
	compactPattern = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)

	excelEpoch = MustParseTime(DateLayout, constants.ExcelEpoch)
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// Date returns the calendar date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time-of-day and location of t, keeping its calendar date.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseFlexible parses the date encodings found in hotel exports: ISO
// (2024-01-02), slash- and dot-delimited (2024/1/2, 2024.01.02), CJK
// (2024年1月2日) and compact (20240102). A trailing time-of-day part is
// ignored. The year always leads. Day- and month-first forms such as
// 02/01/2024 are rejected because they are ambiguous, and a two-digit
// year is accepted only when the value cannot also be read as a day- or
// month-first date: 32-01-15 is 2032-01-15, 24-01-02 is rejected.
func ParseFlexible(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		if m[2] != m[4] {
			return time.Time{}, fmt.Errorf("mixed separators in date %q", value)
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[3])
		day, _ := strconv.Atoi(m[5])
		if len(m[1]) == 2 {
			// The trailing group would be the year of a month-first or
			// day-first reading.
			if valid(2000+day, year, month) || valid(2000+day, month, year) {
				return time.Time{}, fmt.Errorf("ambiguous two-digit year in date %q", value)
			}
			year += 2000
		}
		return build(year, month, day, value)
	}

	if m := cjkPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return build(year, month, day, value)
	}

	if m := compactPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return build(year, month, day, value)
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// FromNumber interprets a numeric spreadsheet cell as a date. Integers in
// the YYYYMMDD range are read as compact dates, anything else as a serial
// day count from the 1899-12-30 epoch. Serial dates outside the years
// 2000..2100 are rejected.
func FromNumber(n float64) (time.Time, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, fmt.Errorf("invalid numeric date %v", n)
	}
	if n == math.Trunc(n) && n >= 10000101 && n <= 99991231 {
		return ParseFlexible(strconv.FormatInt(int64(n), 10))
	}
	return FromExcelSerial(n)
}

// FromExcelSerial converts a spreadsheet serial date; the fractional
// time-of-day part is dropped.
func FromExcelSerial(serial float64) (time.Time, error) {
	days := int(math.Floor(serial))
	t := excelEpoch.AddDate(0, 0, days)
	if t.Year() < constants.MinSerialYear || t.Year() > constants.MaxSerialYear {
		return time.Time{}, fmt.Errorf("serial date %v outside %d..%d", serial, constants.MinSerialYear, constants.MaxSerialYear)
	}
	return t, nil
}

// ExcelSerial returns the serial day number of a calendar date.
func ExcelSerial(t time.Time) float64 {
	return float64(DaysBetween(excelEpoch, t))
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Truncate(b).Sub(Truncate(a)).Hours() / 24))
}

// valid reports whether year, month and day name a calendar date.
func valid(year, month, day int) bool {
	_, err := build(year, month, day, "")
	return err == nil
}

func build(year, month, day int, original string) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month in date %q", original)
	}
	t := Date(year, time.Month(month), day)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("invalid day in date %q", original)
	}
	return t, nil
}
