package aggregate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/roomrev/internal/kpi"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/datetime"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Change compares one measure across two periods. Pct is undefined when the
// prior value is zero or undefined.
type Change struct {
	Current metric.Value `json:"current"`
	Prior   metric.Value `json:"prior"`
	Delta   metric.Value `json:"delta"`
	Pct     metric.Value `json:"pct"`
}

// NewChange computes delta and percentage change from prior to current.
func NewChange(current, prior metric.Value) Change {
	delta := metric.Sub(current, prior)
	return Change{
		Current: current,
		Prior:   prior,
		Delta:   delta,
		Pct:     metric.Div(delta, prior),
	}
}

// Delta is the comparison of one current bucket with its prior period.
type Delta struct {
	Key      string `json:"key"`
	PriorKey string `json:"prior_key"`

	RoomsSold   Change `json:"rooms_sold"`
	RoomRevenue Change `json:"room_revenue"`
	ADR         Change `json:"adr"`
	Occupancy   Change `json:"occupancy"`
	RevPAR      Change `json:"revpar"`

	Decomposition Decomposition `json:"decomposition"`
}

// Compare pairs each current bucket with the prior bucket one year (yoy) or
// one month (mom) earlier and reports the changes. Periods without a prior
// counterpart are omitted. Weekly yoy pairs a week with the one 52 weeks
// earlier; a daily yoy comparison has no counterpart for 29 February, and
// daily mom none for days missing from the previous month. Mom is only
// defined for daily and monthly buckets.
func Compare(current, prior []Bucket, mode string) ([]Delta, error) {
	if mode != constants.ComparisonYoY && mode != constants.ComparisonMoM {
		return nil, fmt.Errorf("unsupported comparison mode %q", mode)
	}
	if len(current) == 0 {
		return nil, nil
	}

	granularity := current[0].Granularity
	byKey := make(map[string]Bucket, len(prior))
	for _, b := range prior {
		if b.Granularity != granularity {
			return nil, fmt.Errorf("cannot compare %s buckets with %s buckets", granularity, b.Granularity)
		}
		byKey[b.Key] = b
	}

	var deltas []Delta
	for _, cur := range current {
		start, ok, err := priorStart(cur.Start, granularity, mode)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		p, ok := byKey[datetime.PeriodKey(start, granularity)]
		if !ok {
			continue
		}

		ci, pi := cur.Inputs(), p.Inputs()
		deltas = append(deltas, Delta{
			Key:           cur.Key,
			PriorKey:      p.Key,
			RoomsSold:     NewChange(cur.RoomsSold, p.RoomsSold),
			RoomRevenue:   NewChange(cur.RoomRevenue, p.RoomRevenue),
			ADR:           NewChange(kpi.ADR(ci), kpi.ADR(pi)),
			Occupancy:     NewChange(kpi.Occupancy(ci), kpi.Occupancy(pi)),
			RevPAR:        NewChange(kpi.RevPAR(ci), kpi.RevPAR(pi)),
			Decomposition: DecomposeBuckets(p, cur),
		})
	}
	return deltas, nil
}

func priorStart(start time.Time, granularity, mode string) (time.Time, bool, error) {
	switch mode {
	case constants.ComparisonYoY:
		switch granularity {
		case constants.GranularityDay:
			t, ok := datetime.ShiftYears(start, -1)
			return t, ok, nil
		case constants.GranularityWeek:
			return start.AddDate(0, 0, -364), true, nil
		case constants.GranularityMonth, constants.GranularityYear:
			return start.AddDate(-1, 0, 0), true, nil
		}
	case constants.ComparisonMoM:
		switch granularity {
		case constants.GranularityDay:
			t, ok := datetime.ShiftMonths(start, -1)
			return t, ok, nil
		case constants.GranularityMonth:
			return start.AddDate(0, -1, 0), true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%s comparison is not defined for %s buckets", mode, granularity)
}

// Point is a period's volume and rate for revenue decomposition.
type Point struct {
	RoomsSold decimal.Decimal
	ADR       decimal.Decimal
}

// Decomposition splits a room revenue change into a volume effect
// (ΔN × ADR_prior), a rate effect (N_prior × ΔADR) and a cross effect
// (ΔN × ΔADR). The three always sum exactly to Total.
type Decomposition struct {
	Defined bool            `json:"defined"`
	Volume  decimal.Decimal `json:"volume"`
	Rate    decimal.Decimal `json:"rate"`
	Cross   decimal.Decimal `json:"cross"`
	Total   decimal.Decimal `json:"total"`
}

// Decompose splits the revenue change between two (rooms sold, ADR) points.
// Decimal arithmetic keeps the identity exact.
func Decompose(prior, current Point) Decomposition {
	dN := current.RoomsSold.Sub(prior.RoomsSold)
	dADR := current.ADR.Sub(prior.ADR)
	return Decomposition{
		Defined: true,
		Volume:  dN.Mul(prior.ADR),
		Rate:    prior.RoomsSold.Mul(dADR),
		Cross:   dN.Mul(dADR),
		Total:   current.RoomsSold.Mul(current.ADR).Sub(prior.RoomsSold.Mul(prior.ADR)),
	}
}

// DecomposeBuckets decomposes the room revenue change between two buckets.
// ADR is derived by decimal division, and the cross effect absorbs the
// rounding of that division so the terms sum exactly to the actual revenue
// change. The result is undefined when either bucket lacks rooms sold or
// room revenue, or sold no rooms.
func DecomposeBuckets(prior, current Bucket) Decomposition {
	pn, pr, ok := soldAndRevenue(prior)
	if !ok {
		return Decomposition{}
	}
	cn, cr, ok := soldAndRevenue(current)
	if !ok {
		return Decomposition{}
	}

	pADR := pr.DivRound(pn, constants.ADRPrecision)
	cADR := cr.DivRound(cn, constants.ADRPrecision)
	dN := cn.Sub(pn)
	volume := dN.Mul(pADR)
	rate := pn.Mul(cADR.Sub(pADR))
	total := cr.Sub(pr)
	return Decomposition{
		Defined: true,
		Volume:  volume,
		Rate:    rate,
		Cross:   total.Sub(volume).Sub(rate),
		Total:   total,
	}
}

func soldAndRevenue(b Bucket) (decimal.Decimal, decimal.Decimal, bool) {
	sold, okSold := b.RoomsSold.Float()
	revenue, okRevenue := b.RoomRevenue.Float()
	if !okSold || !okRevenue || sold == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	return decimal.NewFromFloat(sold), decimal.NewFromFloat(revenue), true
}
