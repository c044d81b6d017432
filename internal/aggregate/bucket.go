// Package aggregate folds canonical records into contiguous time buckets and
// derives rolling averages, period-over-period deltas and revenue
// decompositions from them.
package aggregate

import (
	"fmt"
	"time"

	"github.com/iwvelando/roomrev/internal/kpi"
	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/datetime"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Granularities lists the supported bucket sizes.
var Granularities = []string{
	constants.GranularityDay,
	constants.GranularityWeek,
	constants.GranularityMonth,
	constants.GranularityYear,
}

// Bucket is the fold of every record whose stay date lies in [Start, End).
//
// Rooms sold, rooms available and room revenue are undefined when any
// record in the bucket left them undefined. The remaining amounts count an
// unreported value as zero.
type Bucket struct {
	Key         string    `json:"key"`
	Granularity string    `json:"granularity"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`

	RoomsSold      metric.Value `json:"rooms_sold"`
	RoomsAvailable metric.Value `json:"rooms_available"`
	RoomRevenue    metric.Value `json:"room_revenue"`
	FBRevenue      float64      `json:"fb_revenue"`
	OtherRevenue   float64      `json:"other_revenue"`

	OutOfOrder    float64 `json:"out_of_order"`
	HouseUse      float64 `json:"house_use"`
	Complimentary float64 `json:"complimentary"`
	OverbookHold  float64 `json:"overbook_hold"`

	HouseUseRevenue      float64 `json:"house_use_revenue"`
	ComplimentaryRevenue float64 `json:"complimentary_revenue"`

	Records       int `json:"records"`
	Cancellations int `json:"cancellations"`
	NoShows       int `json:"no_shows"`
}

func newBucket(start time.Time, granularity string) (Bucket, error) {
	end, err := datetime.NextPeriod(start, granularity)
	if err != nil {
		return Bucket{}, err
	}
	return Bucket{
		Key:            datetime.PeriodKey(start, granularity),
		Granularity:    granularity,
		Start:          start,
		End:            end,
		RoomsSold:      metric.Zero(),
		RoomsAvailable: metric.Zero(),
		RoomRevenue:    metric.Zero(),
	}, nil
}

func (b *Bucket) add(r record.Canonical) {
	b.RoomsSold = metric.Add(b.RoomsSold, r.RoomsSold)
	b.RoomsAvailable = metric.Add(b.RoomsAvailable, r.RoomsAvailable)
	b.RoomRevenue = metric.Add(b.RoomRevenue, r.RoomRevenue)
	b.FBRevenue += orZero(r.FBRevenue)
	b.OtherRevenue += orZero(r.OtherRevenue)
	b.OutOfOrder += orZero(r.OutOfOrder)
	b.HouseUse += orZero(r.HouseUse)
	b.Complimentary += orZero(r.Complimentary)
	b.OverbookHold += orZero(r.OverbookHold)
	b.HouseUseRevenue += orZero(r.HouseUseRevenue)
	b.ComplimentaryRevenue += orZero(r.ComplimentaryRevenue)
	b.Records++
	if r.Cancelled {
		b.Cancellations++
	}
	if r.NoShow {
		b.NoShows++
	}
}

func (b *Bucket) merge(o Bucket) {
	b.RoomsSold = metric.Add(b.RoomsSold, o.RoomsSold)
	b.RoomsAvailable = metric.Add(b.RoomsAvailable, o.RoomsAvailable)
	b.RoomRevenue = metric.Add(b.RoomRevenue, o.RoomRevenue)
	b.FBRevenue += o.FBRevenue
	b.OtherRevenue += o.OtherRevenue
	b.OutOfOrder += o.OutOfOrder
	b.HouseUse += o.HouseUse
	b.Complimentary += o.Complimentary
	b.OverbookHold += o.OverbookHold
	b.HouseUseRevenue += o.HouseUseRevenue
	b.ComplimentaryRevenue += o.ComplimentaryRevenue
	b.Records += o.Records
	b.Cancellations += o.Cancellations
	b.NoShows += o.NoShows
}

func orZero(v metric.Value) float64 {
	f, _ := v.Float()
	return f
}

// Bookings is the number of records folded into the bucket.
func (b Bucket) Bookings() int {
	return b.Records
}

// Inputs returns the KPI operands of the bucket.
func (b Bucket) Inputs() kpi.Inputs {
	return kpi.Inputs{
		RoomsSold:            b.RoomsSold,
		RoomsAvailable:       b.RoomsAvailable,
		RoomRevenue:          b.RoomRevenue,
		FBRevenue:            metric.Of(b.FBRevenue),
		OtherRevenue:         metric.Of(b.OtherRevenue),
		OutOfOrder:           metric.Of(b.OutOfOrder),
		HouseUse:             metric.Of(b.HouseUse),
		Complimentary:        metric.Of(b.Complimentary),
		OverbookHold:         metric.Of(b.OverbookHold),
		HouseUseRevenue:      metric.Of(b.HouseUseRevenue),
		ComplimentaryRevenue: metric.Of(b.ComplimentaryRevenue),
	}
}

// KPIs computes every indicator of the bucket from its sums.
func (b Bucket) KPIs() kpi.Set {
	return kpi.Compute(b.Inputs())
}

// Aggregate folds records into buckets of the given granularity. The
// buckets are contiguous and ascending from the period of the earliest stay
// date to that of the latest; periods without records are present with zero
// sums. Records are folded in (stay date, row) order.
func Aggregate(records []record.Canonical, granularity string) ([]Bucket, error) {
	if len(records) == 0 {
		if _, err := datetime.PeriodStart(time.Time{}, granularity); err != nil {
			return nil, err
		}
		return nil, nil
	}

	sorted := record.Sorted(records)
	first, err := datetime.PeriodStart(sorted[0].StayDate, granularity)
	if err != nil {
		return nil, err
	}
	last, err := datetime.PeriodStart(sorted[len(sorted)-1].StayDate, granularity)
	if err != nil {
		return nil, err
	}

	var buckets []Bucket
	index := make(map[string]int)
	for start := first; !start.After(last); {
		b, err := newBucket(start, granularity)
		if err != nil {
			return nil, err
		}
		index[b.Key] = len(buckets)
		buckets = append(buckets, b)
		start = b.End
	}

	for _, r := range sorted {
		start, err := datetime.PeriodStart(r.StayDate, granularity)
		if err != nil {
			return nil, err
		}
		i, ok := index[datetime.PeriodKey(start, granularity)]
		if !ok {
			return nil, fmt.Errorf("no bucket for stay date %s", r.StayDate.Format(constants.DateLayout))
		}
		buckets[i].add(r)
	}
	return buckets, nil
}

// Total folds a bucket sequence into a single bucket spanning it.
func Total(buckets []Bucket) Bucket {
	total := Bucket{
		Key:            "total",
		RoomsSold:      metric.Zero(),
		RoomsAvailable: metric.Zero(),
		RoomRevenue:    metric.Zero(),
	}
	if len(buckets) == 0 {
		return total
	}
	total.Granularity = buckets[0].Granularity
	total.Start = buckets[0].Start
	total.End = buckets[len(buckets)-1].End
	for _, b := range buckets {
		total.merge(b)
	}
	return total
}
