package datetime

import (
	"testing"
	"time"

	"github.com/iwvelando/roomrev/pkg/constants"
)

func TestMustParseTime(t *testing.T) {
	result := MustParseTime(DateLayout, "2024-06-15")
	if result.Format(DateLayout) != "2024-06-15" {
		t.Errorf("MustParseTime() = %s, expected 2024-06-15", result.Format(DateLayout))
	}
}

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateLayout, "invalid-date")
}

func TestParseFlexible(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "ISO", input: "2024-01-02", expected: "2024-01-02"},
		{name: "ISO with time", input: "2024-01-02T15:04:05Z", expected: "2024-01-02"},
		{name: "ISO with space time", input: "2024-01-02 08:30", expected: "2024-01-02"},
		{name: "Slash unpadded", input: "2024/1/2", expected: "2024-01-02"},
		{name: "Dot delimited", input: "2024.01.02", expected: "2024-01-02"},
		{name: "Two digit year dash", input: "32-01-15", expected: "2032-01-15"},
		{name: "Two digit year slash", input: "45/6/30", expected: "2045-06-30"},
		{name: "Two digit year dot", input: "99.12.31", expected: "2099-12-31"},
		{name: "Two digit year with time", input: "32-01-15 08:30", expected: "2032-01-15"},
		{name: "Two digit year could be day first", input: "24-01-02", wantErr: true},
		{name: "Two digit year could be month first", input: "01/02/24", wantErr: true},
		{name: "Two digit dotted could be day first", input: "03.04.25", wantErr: true},
		{name: "Month first two digit year", input: "12/31/24", wantErr: true},
		{name: "Two digit year invalid day", input: "32-02-30", wantErr: true},
		{name: "Compact", input: "20240615", expected: "2024-06-15"},
		{name: "CJK", input: "2024年6月15日", expected: "2024-06-15"},
		{name: "Surrounding space", input: "  2024-06-15 ", expected: "2024-06-15"},
		{name: "Leap day", input: "2024-02-29", expected: "2024-02-29"},
		{name: "Empty", input: "", wantErr: true},
		{name: "Garbage", input: "tomorrow", wantErr: true},
		{name: "Day first is ambiguous", input: "02/01/2024", wantErr: true},
		{name: "Mixed separators", input: "2024-01/02", wantErr: true},
		{name: "Invalid month", input: "2024-13-01", wantErr: true},
		{name: "Invalid day", input: "2023-02-29", wantErr: true},
		{name: "Invalid compact", input: "20241340", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseFlexible(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFlexible(%q) expected error, got %s", tt.input, result.Format(DateLayout))
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFlexible(%q) error = %v", tt.input, err)
			}
			if result.Format(DateLayout) != tt.expected {
				t.Errorf("ParseFlexible(%q) = %s, expected %s", tt.input, result.Format(DateLayout), tt.expected)
			}
			if result.Location() != time.UTC || result.Hour() != 0 {
				t.Errorf("ParseFlexible(%q) should return midnight UTC, got %v", tt.input, result)
			}
		})
	}
}

func TestFromNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
		wantErr  bool
	}{
		{name: "Excel serial", input: 45292, expected: "2024-01-01"},
		{name: "Excel serial with time", input: 45292.75, expected: "2024-01-01"},
		{name: "Compact integer", input: 20240801, expected: "2024-08-01"},
		{name: "Serial before 2000", input: 100, wantErr: true},
		{name: "Invalid compact integer", input: 20241301, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FromNumber(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("FromNumber(%v) expected error, got %s", tt.input, result.Format(DateLayout))
				}
				return
			}
			if err != nil {
				t.Fatalf("FromNumber(%v) error = %v", tt.input, err)
			}
			if result.Format(DateLayout) != tt.expected {
				t.Errorf("FromNumber(%v) = %s, expected %s", tt.input, result.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestExcelSerialRoundTrip(t *testing.T) {
	date := Date(2024, time.June, 15)
	back, err := FromExcelSerial(ExcelSerial(date))
	if err != nil {
		t.Fatalf("FromExcelSerial() error = %v", err)
	}
	if !back.Equal(date) {
		t.Errorf("round trip = %s, expected %s", back.Format(DateLayout), date.Format(DateLayout))
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"Same day", "2024-06-15", "2024-06-15", 0},
		{"Thirty days", "2024-05-16", "2024-06-15", 30},
		{"Across leap day", "2024-02-28", "2024-03-01", 2},
		{"Negative", "2024-06-16", "2024-06-15", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DaysBetween(MustParseTime(DateLayout, tt.a), MustParseTime(DateLayout, tt.b))
			if result != tt.expected {
				t.Errorf("DaysBetween(%s, %s) = %d, expected %d", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestPeriodStart(t *testing.T) {
	// 2024-06-15 is a Saturday.
	date := Date(2024, time.June, 15)
	tests := []struct {
		granularity string
		expected    string
		key         string
	}{
		{constants.GranularityDay, "2024-06-15", "2024-06-15"},
		{constants.GranularityWeek, "2024-06-10", "2024-W24"},
		{constants.GranularityMonth, "2024-06-01", "2024-06"},
		{constants.GranularityYear, "2024-01-01", "2024"},
	}

	for _, tt := range tests {
		t.Run(tt.granularity, func(t *testing.T) {
			start, err := PeriodStart(date, tt.granularity)
			if err != nil {
				t.Fatalf("PeriodStart() error = %v", err)
			}
			if start.Format(DateLayout) != tt.expected {
				t.Errorf("PeriodStart(%s) = %s, expected %s", tt.granularity, start.Format(DateLayout), tt.expected)
			}
			if key := PeriodKey(start, tt.granularity); key != tt.key {
				t.Errorf("PeriodKey(%s) = %s, expected %s", tt.granularity, key, tt.key)
			}
		})
	}

	if _, err := PeriodStart(date, "fortnight"); err == nil {
		t.Errorf("PeriodStart() expected error for unsupported granularity")
	}
}

func TestNextPeriod(t *testing.T) {
	start := Date(2024, time.January, 31)
	next, err := NextPeriod(Date(2024, time.January, 1), constants.GranularityMonth)
	if err != nil {
		t.Fatalf("NextPeriod() error = %v", err)
	}
	if next.Format(DateLayout) != "2024-02-01" {
		t.Errorf("NextPeriod(month) = %s, expected 2024-02-01", next.Format(DateLayout))
	}
	next, _ = NextPeriod(start, constants.GranularityDay)
	if next.Format(DateLayout) != "2024-02-01" {
		t.Errorf("NextPeriod(day) = %s, expected 2024-02-01", next.Format(DateLayout))
	}
}

func TestShifts(t *testing.T) {
	leap := Date(2024, time.February, 29)
	if _, ok := ShiftYears(leap, -1); ok {
		t.Errorf("ShiftYears(2024-02-29, -1) should not exist")
	}
	if shifted, ok := ShiftYears(Date(2024, time.June, 15), -1); !ok || shifted.Format(DateLayout) != "2023-06-15" {
		t.Errorf("ShiftYears(2024-06-15, -1) = %s, %v", shifted.Format(DateLayout), ok)
	}
	if _, ok := ShiftMonths(Date(2024, time.March, 31), -1); ok {
		t.Errorf("ShiftMonths(2024-03-31, -1) should not exist")
	}
	if shifted, ok := ShiftMonths(Date(2024, time.January, 15), -1); !ok || shifted.Format(DateLayout) != "2023-12-15" {
		t.Errorf("ShiftMonths(2024-01-15, -1) = %s, %v", shifted.Format(DateLayout), ok)
	}
	// Day 167 of 2024 is 2024-06-15; day 167 of 2023 is 2023-06-16.
	if shifted, ok := SameDayOfYear(Date(2024, time.June, 15), 2023); !ok || shifted.Format(DateLayout) != "2023-06-16" {
		t.Errorf("SameDayOfYear(2024-06-15, 2023) = %s, %v", shifted.Format(DateLayout), ok)
	}
	if _, ok := SameDayOfYear(Date(2024, time.December, 31), 2023); ok {
		t.Errorf("SameDayOfYear(day 366, 2023) should not exist")
	}
}
