package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/iwvelando/roomrev/internal/kpi"
	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Slice keeps the records whose stay date lies in [from, to], both ends
// inclusive. A zero bound is open.
func Slice(records []record.Canonical, from, to time.Time) []record.Canonical {
	var out []record.Canonical
	for _, r := range records {
		if !from.IsZero() && r.StayDate.Before(from) {
			continue
		}
		if !to.IsZero() && r.StayDate.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Group is the fold of the records sharing one dimension value.
type Group struct {
	Key            string       `json:"key"`
	Records        int          `json:"records"`
	RoomsSold      metric.Value `json:"rooms_sold"`
	RoomsAvailable metric.Value `json:"rooms_available"`
	RoomRevenue    metric.Value `json:"room_revenue"`
	ADR            metric.Value `json:"adr"`
	RevPAR         metric.Value `json:"revpar"`
}

// TopGroups groups records by a dimension and returns the n groups with the
// highest room revenue, ties broken by key. Groups with undefined revenue
// sort last. n <= 0 returns every group.
func TopGroups(records []record.Canonical, dimension string, n int) ([]Group, error) {
	groups := make(map[string]*Group)
	for _, r := range record.Sorted(records) {
		key, err := r.Dimension(dimension)
		if err != nil {
			return nil, err
		}
		if key == "" {
			key = constants.BlankDimension
		}
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key, RoomsSold: metric.Zero(), RoomsAvailable: metric.Zero(), RoomRevenue: metric.Zero()}
			groups[key] = g
		}
		g.Records++
		g.RoomsSold = metric.Add(g.RoomsSold, r.RoomsSold)
		g.RoomsAvailable = metric.Add(g.RoomsAvailable, r.RoomsAvailable)
		g.RoomRevenue = metric.Add(g.RoomRevenue, r.RoomRevenue)
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		in := kpi.Inputs{RoomsSold: g.RoomsSold, RoomsAvailable: g.RoomsAvailable, RoomRevenue: g.RoomRevenue}
		g.ADR = kpi.ADR(in)
		g.RevPAR = kpi.RevPAR(in)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := revenueKey(out[i]), revenueKey(out[j])
		if ri != rj {
			return ri > rj
		}
		return out[i].Key < out[j].Key
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func revenueKey(g Group) float64 {
	if v, ok := g.RoomRevenue.Float(); ok {
		return v
	}
	return math.Inf(-1)
}
