// Package kpi computes revenue-management indicators.
//
// Every division returns metric.Undefined when its denominator is zero, and
// an undefined operand makes the result undefined. Exclusion counts (out of
// order, house use, complimentary, overbook hold) and house-use or
// complimentary revenue are operational adjustments: when not reported they
// count as zero. Rooms sold, rooms available and room revenue are never
// substituted.
package kpi

import (
	"sort"

	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Inputs are the operands of the indicators, from one record or a bucket.
type Inputs struct {
	RoomsSold      metric.Value
	RoomsAvailable metric.Value
	RoomRevenue    metric.Value
	FBRevenue      metric.Value
	OtherRevenue   metric.Value

	OutOfOrder    metric.Value
	HouseUse      metric.Value
	Complimentary metric.Value
	OverbookHold  metric.Value

	HouseUseRevenue      metric.Value
	ComplimentaryRevenue metric.Value
}

// FromRecord takes the operands of a single record.
func FromRecord(r record.Canonical) Inputs {
	return Inputs{
		RoomsSold:            r.RoomsSold,
		RoomsAvailable:       r.RoomsAvailable,
		RoomRevenue:          r.RoomRevenue,
		FBRevenue:            r.FBRevenue,
		OtherRevenue:         r.OtherRevenue,
		OutOfOrder:           r.OutOfOrder,
		HouseUse:             r.HouseUse,
		Complimentary:        r.Complimentary,
		OverbookHold:         r.OverbookHold,
		HouseUseRevenue:      r.HouseUseRevenue,
		ComplimentaryRevenue: r.ComplimentaryRevenue,
	}
}

// Occupancy is rooms sold over rooms available.
func Occupancy(in Inputs) metric.Value {
	return metric.Div(in.RoomsSold, in.RoomsAvailable)
}

// SellableOccupancy excludes non-revenue rooms from both sides and out of
// order rooms from the inventory:
// (sold - HUS - COMP) / (available - OOO - HUS - COMP).
func SellableOccupancy(in Inputs) metric.Value {
	nonRevenue := metric.Add(in.HouseUse.OrZero(), in.Complimentary.OrZero())
	sold := metric.Sub(in.RoomsSold, nonRevenue)
	return metric.Div(sold, sellableInventory(in))
}

// ADR is room revenue over rooms sold.
func ADR(in Inputs) metric.Value {
	return metric.Div(in.RoomRevenue, in.RoomsSold)
}

// SellableRevenue is room revenue less house-use and complimentary revenue.
func SellableRevenue(in Inputs) metric.Value {
	return metric.Sub(in.RoomRevenue, metric.Add(in.HouseUseRevenue.OrZero(), in.ComplimentaryRevenue.OrZero()))
}

// ADRSellableOverbook (variant A) divides sellable revenue by the sellable
// inventory with overbook holds added back:
// available - OOO + MBK - HUS - COMP.
func ADRSellableOverbook(in Inputs) metric.Value {
	return metric.Div(SellableRevenue(in), metric.Add(sellableInventory(in), in.OverbookHold.OrZero()))
}

// ADRSellable (variant B) divides sellable revenue by
// available - OOO - HUS - COMP.
func ADRSellable(in Inputs) metric.Value {
	return metric.Div(SellableRevenue(in), sellableInventory(in))
}

// RevPAR is room revenue over rooms available.
func RevPAR(in Inputs) metric.Value {
	return metric.Div(in.RoomRevenue, in.RoomsAvailable)
}

// TotalRevenue adds F&B and other revenue to room revenue. Unreported F&B or
// other revenue adds nothing.
func TotalRevenue(in Inputs) metric.Value {
	return metric.Sum(in.RoomRevenue, in.FBRevenue.OrZero(), in.OtherRevenue.OrZero())
}

// OutOfOrderRate is out of order rooms over rooms available.
func OutOfOrderRate(in Inputs) metric.Value {
	return metric.Div(in.OutOfOrder.OrZero(), in.RoomsAvailable)
}

func sellableInventory(in Inputs) metric.Value {
	excluded := metric.Sum(in.OutOfOrder.OrZero(), in.HouseUse.OrZero(), in.Complimentary.OrZero())
	return metric.Sub(in.RoomsAvailable, excluded)
}

// Indicator names, in presentation order.
const (
	NameOccupancy           = "occupancy"
	NameSellableOccupancy   = "sellable_occupancy"
	NameADR                 = "adr"
	NameADRSellableOverbook = "adr_sellable_overbook"
	NameADRSellable         = "adr_sellable"
	NameRevPAR              = "revpar"
	NameSellableRevenue     = "sellable_revenue"
	NameTotalRevenue        = "total_revenue"
	NameOutOfOrderRate      = "ooo_rate"
)

// Set holds every indicator for one set of inputs.
type Set struct {
	Occupancy           metric.Value `json:"occupancy"`
	SellableOccupancy   metric.Value `json:"sellable_occupancy"`
	ADR                 metric.Value `json:"adr"`
	ADRSellableOverbook metric.Value `json:"adr_sellable_overbook"`
	ADRSellable         metric.Value `json:"adr_sellable"`
	RevPAR              metric.Value `json:"revpar"`
	SellableRevenue     metric.Value `json:"sellable_revenue"`
	TotalRevenue        metric.Value `json:"total_revenue"`
	OutOfOrderRate      metric.Value `json:"ooo_rate"`
}

// Compute evaluates every indicator.
func Compute(in Inputs) Set {
	return Set{
		Occupancy:           Occupancy(in),
		SellableOccupancy:   SellableOccupancy(in),
		ADR:                 ADR(in),
		ADRSellableOverbook: ADRSellableOverbook(in),
		ADRSellable:         ADRSellable(in),
		RevPAR:              RevPAR(in),
		SellableRevenue:     SellableRevenue(in),
		TotalRevenue:        TotalRevenue(in),
		OutOfOrderRate:      OutOfOrderRate(in),
	}
}

// Named is one indicator with its name.
type Named struct {
	Name  string       `json:"name"`
	Value metric.Value `json:"value"`
}

// Named lists the indicators in presentation order.
func (s Set) Named() []Named {
	return []Named{
		{NameOccupancy, s.Occupancy},
		{NameSellableOccupancy, s.SellableOccupancy},
		{NameADR, s.ADR},
		{NameADRSellableOverbook, s.ADRSellableOverbook},
		{NameADRSellable, s.ADRSellable},
		{NameRevPAR, s.RevPAR},
		{NameSellableRevenue, s.SellableRevenue},
		{NameTotalRevenue, s.TotalRevenue},
		{NameOutOfOrderRate, s.OutOfOrderRate},
	}
}

// RoomTypeOccupancy is the occupancy of one room type.
type RoomTypeOccupancy struct {
	RoomType       string       `json:"room_type"`
	RoomsSold      float64      `json:"rooms_sold"`
	RoomsAvailable float64      `json:"rooms_available"`
	Occupancy      metric.Value `json:"occupancy"`
}

// ByRoomType computes occupancy per distinct room type from the sums of its
// records, sorted by room type. Records without a room type, or with an
// undefined sold or available count, are skipped.
func ByRoomType(records []record.Canonical) []RoomTypeOccupancy {
	sums := make(map[string]*RoomTypeOccupancy)
	for _, r := range record.Sorted(records) {
		sold, okSold := r.RoomsSold.Float()
		avail, okAvail := r.RoomsAvailable.Float()
		if r.RoomType == "" || !okSold || !okAvail {
			continue
		}
		s, ok := sums[r.RoomType]
		if !ok {
			s = &RoomTypeOccupancy{RoomType: r.RoomType}
			sums[r.RoomType] = s
		}
		s.RoomsSold += sold
		s.RoomsAvailable += avail
	}

	out := make([]RoomTypeOccupancy, 0, len(sums))
	for _, s := range sums {
		s.Occupancy = metric.Div(metric.Of(s.RoomsSold), metric.Of(s.RoomsAvailable))
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomType < out[j].RoomType })
	return out
}
