package analysis

import (
	"time"

	"github.com/iwvelando/roomrev/internal/aggregate"
	"github.com/iwvelando/roomrev/internal/kpi"
	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Summary is the headline view of a run. Indicators are computed from the
// summed totals, never by averaging per-bucket ratios.
type Summary struct {
	Records  int       `json:"records"`
	Rejected int       `json:"rejected"`
	FirstDay time.Time `json:"first_day"`
	LastDay  time.Time `json:"last_day"`

	RoomsSold      metric.Value `json:"rooms_sold"`
	RoomsAvailable metric.Value `json:"rooms_available"`
	RoomRevenue    metric.Value `json:"room_revenue"`
	KPIs           kpi.Set      `json:"kpis"`
}

// Summarize builds the summary of sorted records and their buckets.
func Summarize(records []record.Canonical, rejected int, buckets []aggregate.Bucket) Summary {
	total := aggregate.Total(buckets)
	s := Summary{
		Records:        len(records),
		Rejected:       rejected,
		RoomsSold:      total.RoomsSold,
		RoomsAvailable: total.RoomsAvailable,
		RoomRevenue:    total.RoomRevenue,
		KPIs:           total.KPIs(),
	}
	if len(records) > 0 {
		s.FirstDay = records[0].StayDate
		s.LastDay = records[len(records)-1].StayDate
	}
	return s
}
