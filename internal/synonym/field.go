// Package synonym holds the canonical fields of a hotel operations record
// and the table of header aliases that identify them in spreadsheet exports.
package synonym

// Field is a canonical field name.
type Field string

const (
	StayDate             Field = "stay_date"
	BookingDate          Field = "booking_date"
	RoomsSold            Field = "rooms_sold"
	RoomsAvailable       Field = "rooms_available"
	RoomRevenue          Field = "room_revenue"
	FBRevenue            Field = "fb_revenue"
	OtherRevenue         Field = "other_revenue"
	Channel              Field = "channel"
	RatePlan             Field = "rate_plan"
	MarketSegment        Field = "market_segment"
	RoomType             Field = "room_type"
	Cancelled            Field = "cancelled"
	NoShow               Field = "no_show"
	OutOfOrder           Field = "out_of_order"
	HouseUse             Field = "house_use"
	Complimentary        Field = "complimentary"
	OverbookHold         Field = "overbook_hold"
	HouseUseRevenue      Field = "house_use_revenue"
	ComplimentaryRevenue Field = "complimentary_revenue"
)

// Order is the fixed processing order of canonical fields. When one header
// could satisfy two fields, the field listed first claims it.
var Order = []Field{
	StayDate,
	RoomsSold,
	RoomsAvailable,
	RoomRevenue,
	BookingDate,
	FBRevenue,
	OtherRevenue,
	Channel,
	RatePlan,
	MarketSegment,
	RoomType,
	Cancelled,
	NoShow,
	OutOfOrder,
	HouseUse,
	Complimentary,
	OverbookHold,
	HouseUseRevenue,
	ComplimentaryRevenue,
}

// Required lists the fields every input must provide.
var Required = []Field{StayDate, RoomsSold, RoomsAvailable, RoomRevenue}

// IsRequired reports whether the field must be present in every input.
func (f Field) IsRequired() bool {
	for _, r := range Required {
		if r == f {
			return true
		}
	}
	return false
}

// Valid reports whether f is a known canonical field.
func (f Field) Valid() bool {
	for _, o := range Order {
		if o == f {
			return true
		}
	}
	return false
}

// ParseField returns the canonical field with the given name.
func ParseField(name string) (Field, bool) {
	f := Field(Normalize(name))
	return f, f.Valid()
}
