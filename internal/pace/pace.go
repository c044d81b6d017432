// Package pace builds booking pace curves: for one stay date, the cumulative
// rooms booked as a function of lead time (days before arrival).
package pace

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/datetime"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Point is the cumulative rooms booked at a lead time.
type Point struct {
	LeadTime   int     `json:"lead_time"`
	Cumulative float64 `json:"cumulative"`
}

// Series is the pace curve of one stay date. Points are ordered by lead time
// descending, ending nearest to arrival.
type Series struct {
	StayDate time.Time `json:"stay_date"`
	Points   []Point   `json:"points"`
}

// At returns the cumulative rooms booked at lead time L or earlier, that is
// the value of the first point at or beyond L. It is zero before the first
// booking.
func (s Series) At(lead int) float64 {
	total := 0.0
	for _, p := range s.Points {
		if p.LeadTime < lead {
			break
		}
		total = p.Cumulative
	}
	return total
}

// Final is the cumulative rooms booked at the point nearest to arrival.
func (s Series) Final() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Cumulative
}

// Pickup is the rooms booked between two snapshots of the same stay date,
// fromLead days and toLead days before arrival. It is undefined when the
// snapshots are out of order.
func Pickup(s Series, fromLead, toLead int) metric.Value {
	if fromLead < toLead {
		return metric.Undefined
	}
	return metric.Of(s.At(toLead) - s.At(fromLead))
}

// Warning describes a record left out of, or adjusted in, a pace curve.
type Warning struct {
	Row      int       `json:"row"`
	StayDate time.Time `json:"stay_date"`
	Message  string    `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d: stay %s: %s", w.Row, w.StayDate.Format(constants.DateLayout), w.Message)
}

// Builder accumulates bookings of one stay date.
type Builder struct {
	stay     time.Time
	rooms    map[int]float64
	warnings []Warning
}

// NewBuilder starts a curve for a stay date.
func NewBuilder(stay time.Time) *Builder {
	return &Builder{stay: datetime.Truncate(stay), rooms: make(map[int]float64)}
}

// Add folds one booking in. Cancelled bookings are ignored. Bookings for
// another stay date, without a booking date or without rooms sold are
// skipped with a warning; a booking made after arrival counts at lead time 0
// with a warning.
func (b *Builder) Add(r record.Canonical) {
	warn := func(format string, args ...interface{}) {
		b.warnings = append(b.warnings, Warning{Row: r.Row, StayDate: b.stay, Message: fmt.Sprintf(format, args...)})
	}

	if !r.StayDate.Equal(b.stay) {
		warn("stay date %s does not belong to this curve", r.StayDate.Format(constants.DateLayout))
		return
	}
	if r.Cancelled {
		return
	}
	lead, ok := r.LeadTime()
	if !ok {
		warn("no booking date")
		return
	}
	rooms, ok := r.RoomsSold.Float()
	if !ok {
		warn("no rooms sold")
		return
	}
	if lead < 0 {
		warn("booked %d days after arrival, counted at lead time 0", -lead)
		lead = 0
	}
	b.rooms[lead] += rooms
}

// Build freezes the curve. With snapshot dates, the curve is sampled at each
// snapshot's lead time; otherwise at every lead time with bookings.
// Snapshots after the stay date are skipped with a warning.
func (b *Builder) Build(asOf []time.Time) (Series, []Warning) {
	warnings := append([]Warning(nil), b.warnings...)
	var leads []int
	if len(asOf) == 0 {
		for lead := range b.rooms {
			leads = append(leads, lead)
		}
	} else {
		for _, snapshot := range asOf {
			lead := datetime.DaysBetween(snapshot, b.stay)
			if lead < 0 {
				warnings = append(warnings, Warning{
					Row:      -1,
					StayDate: b.stay,
					Message:  fmt.Sprintf("snapshot %s is after arrival", snapshot.Format(constants.DateLayout)),
				})
				continue
			}
			leads = append(leads, lead)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(leads)))

	s := Series{StayDate: b.stay}
	for _, lead := range leads {
		if n := len(s.Points); n > 0 && s.Points[n-1].LeadTime == lead {
			continue
		}
		s.Points = append(s.Points, Point{LeadTime: lead, Cumulative: b.cumulative(lead)})
	}
	return s, warnings
}

func (b *Builder) cumulative(lead int) float64 {
	keys := make([]int, 0, len(b.rooms))
	for l := range b.rooms {
		keys = append(keys, l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	total := 0.0
	for _, l := range keys {
		if l < lead {
			break
		}
		total += b.rooms[l]
	}
	return total
}

// Build makes the pace curve of stayDate from its bookings, sampled at the
// asOf snapshots when given.
func Build(stayDate time.Time, records []record.Canonical, asOf []time.Time) (Series, []Warning) {
	b := NewBuilder(stayDate)
	for _, r := range record.Sorted(records) {
		b.Add(r)
	}
	return b.Build(asOf)
}

// BuildAll builds one curve per distinct stay date, ascending.
func BuildAll(records []record.Canonical) ([]Series, []Warning) {
	sorted := record.Sorted(records)

	var (
		series   []Series
		warnings []Warning
		builder  *Builder
	)
	flush := func() {
		if builder == nil {
			return
		}
		s, w := builder.Build(nil)
		series = append(series, s)
		warnings = append(warnings, w...)
	}
	for _, r := range sorted {
		if builder == nil || !builder.stay.Equal(r.StayDate) {
			flush()
			builder = NewBuilder(r.StayDate)
		}
		builder.Add(r)
	}
	flush()
	return series, warnings
}
