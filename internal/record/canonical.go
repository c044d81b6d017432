package record

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/datetime"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Canonical is one normalized row. Numeric fields are undefined when the
// source did not provide them, which is distinct from zero.
type Canonical struct {
	// Row is the index of the source row.
	Row int

	StayDate       time.Time
	BookingDate    time.Time
	HasBookingDate bool

	RoomsSold      metric.Value
	RoomsAvailable metric.Value
	RoomRevenue    metric.Value
	FBRevenue      metric.Value
	OtherRevenue   metric.Value

	Channel       string
	RatePlan      string
	MarketSegment string
	RoomType      string

	Cancelled bool
	NoShow    bool

	OutOfOrder    metric.Value // OOO
	HouseUse      metric.Value // HUS
	Complimentary metric.Value // COMP
	OverbookHold  metric.Value // MBK

	HouseUseRevenue      metric.Value
	ComplimentaryRevenue metric.Value
}

// Dimensions lists the dimension names accepted by Dimension.
var Dimensions = []string{
	constants.DimensionChannel,
	constants.DimensionRatePlan,
	constants.DimensionMarketSegment,
	constants.DimensionRoomType,
}

// ValidDimension reports whether name is a known dimension.
func ValidDimension(name string) bool {
	for _, d := range Dimensions {
		if d == name {
			return true
		}
	}
	return false
}

// Dimension returns the value of the named dimension.
func (c Canonical) Dimension(name string) (string, error) {
	switch name {
	case constants.DimensionChannel:
		return c.Channel, nil
	case constants.DimensionRatePlan:
		return c.RatePlan, nil
	case constants.DimensionMarketSegment:
		return c.MarketSegment, nil
	case constants.DimensionRoomType:
		return c.RoomType, nil
	default:
		return "", fmt.Errorf("unknown dimension %q, expected one of %s", name, strings.Join(Dimensions, ", "))
	}
}

// LeadTime returns the days between booking and stay, and false when the
// record has no booking date.
func (c Canonical) LeadTime() (int, bool) {
	if !c.HasBookingDate {
		return 0, false
	}
	return datetime.DaysBetween(c.BookingDate, c.StayDate), true
}

// Sort orders records by stay date, then by source row. This is the fold
// order of every aggregation, which keeps floating-point sums reproducible.
func Sort(records []Canonical) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].StayDate.Equal(records[j].StayDate) {
			return records[i].StayDate.Before(records[j].StayDate)
		}
		return records[i].Row < records[j].Row
	})
}

// Sorted returns a sorted copy.
func Sorted(records []Canonical) []Canonical {
	out := make([]Canonical, len(records))
	copy(out, records)
	Sort(out)
	return out
}

// Rejected is a source row that could not become a Canonical record.
type Rejected struct {
	Row    int    `json:"row"`
	Cells  []Cell `json:"-"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// String renders the rejection for logs and reports.
func (r Rejected) String() string {
	return fmt.Sprintf("row %d: %s: %s", r.Row, r.Field, r.Reason)
}
