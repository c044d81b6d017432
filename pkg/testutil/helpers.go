// Package testutil provides common fixtures for testing.
package testutil

import (
	"time"

	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/datetime"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Headers are resolvable header names for every canonical field, in the
// column order produced by FormatRow.
var Headers = []string{
	"stay_date", "booking_date",
	"rooms_sold", "rooms_available", "room_revenue", "fb_revenue", "other_revenue",
	"channel", "rate_plan", "segment", "room_type",
	"cancelled", "no_show",
	"out_of_order", "house_use", "complimentary", "overbook_hold",
	"house_use_revenue", "complimentary_revenue",
}

// Day parses a YYYY-MM-DD date and panics on error.
func Day(s string) time.Time {
	return datetime.MustParseTime(constants.DateLayout, s)
}

// Record builds a record with the required measures set.
func Record(stay string, sold, available, revenue float64) record.Canonical {
	return record.Canonical{
		StayDate:       Day(stay),
		RoomsSold:      metric.Of(sold),
		RoomsAvailable: metric.Of(available),
		RoomRevenue:    metric.Of(revenue),
	}
}

// Booking builds a booking record for pace and cancellation analysis.
func Booking(stay, booked string, sold float64) record.Canonical {
	return record.Canonical{
		StayDate:       Day(stay),
		BookingDate:    Day(booked),
		HasBookingDate: true,
		RoomsSold:      metric.Of(sold),
	}
}

// Numbered assigns consecutive source rows to records.
func Numbered(records ...record.Canonical) []record.Canonical {
	for i := range records {
		records[i].Row = i
	}
	return records
}

// FormatRow renders a record as a text row aligned to Headers. Undefined
// numbers and a missing booking date are left blank.
func FormatRow(index int, rec record.Canonical) record.RawRow {
	values := []string{
		rec.StayDate.Format(constants.DateLayout),
		"",
		number(rec.RoomsSold), number(rec.RoomsAvailable), number(rec.RoomRevenue),
		number(rec.FBRevenue), number(rec.OtherRevenue),
		rec.Channel, rec.RatePlan, rec.MarketSegment, rec.RoomType,
		flag(rec.Cancelled), flag(rec.NoShow),
		number(rec.OutOfOrder), number(rec.HouseUse), number(rec.Complimentary), number(rec.OverbookHold),
		number(rec.HouseUseRevenue), number(rec.ComplimentaryRevenue),
	}
	if rec.HasBookingDate {
		values[1] = rec.BookingDate.Format(constants.DateLayout)
	}
	return Row(index, values...)
}

// Row builds a raw text row; blank values become empty cells.
func Row(index int, values ...string) record.RawRow {
	cells := make([]record.Cell, len(values))
	for i, v := range values {
		cells[i] = record.CellFromString(v)
	}
	return record.RawRow{Index: index, Cells: cells}
}

func number(v metric.Value) string {
	if !v.Defined() {
		return ""
	}
	return v.String()
}

func flag(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
