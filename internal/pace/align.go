package pace

import (
	"fmt"
	"time"

	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/datetime"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// AlignMode selects how a stay date is matched with the prior year. The zero
// value is not a valid mode.
type AlignMode int

const (
	// AlignSameDate matches the same month and day.
	AlignSameDate AlignMode = iota + 1
	// AlignDayOfYear matches the same ordinal day of the year.
	AlignDayOfYear
)

// ParseAlignMode parses a configured alignment mode.
func ParseAlignMode(s string) (AlignMode, error) {
	switch s {
	case constants.PaceAlignSameDate:
		return AlignSameDate, nil
	case constants.PaceAlignDayOfYear:
		return AlignDayOfYear, nil
	default:
		return 0, fmt.Errorf("unknown pace alignment %q, expected %s or %s", s, constants.PaceAlignSameDate, constants.PaceAlignDayOfYear)
	}
}

func (m AlignMode) String() string {
	switch m {
	case AlignSameDate:
		return constants.PaceAlignSameDate
	case AlignDayOfYear:
		return constants.PaceAlignDayOfYear
	default:
		return "unset"
	}
}

// MarshalText encodes the mode by name.
func (m AlignMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// PriorStayDate returns the stay date one year before stay under the mode.
// The second result is false when there is none (29 February with
// AlignSameDate, day 366 with AlignDayOfYear).
func PriorStayDate(stay time.Time, mode AlignMode) (time.Time, bool, error) {
	switch mode {
	case AlignSameDate:
		t, ok := datetime.ShiftYears(stay, -1)
		return t, ok, nil
	case AlignDayOfYear:
		t, ok := datetime.SameDayOfYear(stay, stay.Year()-1)
		return t, ok, nil
	default:
		return time.Time{}, false, fmt.Errorf("pace alignment mode must be set explicitly")
	}
}

// ComparisonPoint pairs the two curves at one lead time. A side without a
// point at that lead time is undefined.
type ComparisonPoint struct {
	LeadTime int          `json:"lead_time"`
	Current  metric.Value `json:"current"`
	Prior    metric.Value `json:"prior"`
	Delta    metric.Value `json:"delta"`
}

// Comparison is a current curve aligned with its prior-year curve.
type Comparison struct {
	StayDate      time.Time         `json:"stay_date"`
	PriorStayDate time.Time         `json:"prior_stay_date"`
	Mode          AlignMode         `json:"mode"`
	Points        []ComparisonPoint `json:"points"`
}

// Align pairs two curves by lead time. The prior curve's stay date must be
// the one PriorStayDate gives for the current stay date under mode.
func Align(current, prior Series, mode AlignMode) (Comparison, error) {
	expected, ok, err := PriorStayDate(current.StayDate, mode)
	if err != nil {
		return Comparison{}, err
	}
	if !ok {
		return Comparison{}, fmt.Errorf("stay date %s has no prior-year counterpart by %s", current.StayDate.Format(constants.DateLayout), mode)
	}
	if !expected.Equal(prior.StayDate) {
		return Comparison{}, fmt.Errorf("prior stay date %s does not match %s by %s (expected %s)",
			prior.StayDate.Format(constants.DateLayout), current.StayDate.Format(constants.DateLayout), mode, expected.Format(constants.DateLayout))
	}

	c := Comparison{StayDate: current.StayDate, PriorStayDate: prior.StayDate, Mode: mode}
	i, j := 0, 0
	for i < len(current.Points) || j < len(prior.Points) {
		var lead int
		switch {
		case j >= len(prior.Points):
			lead = current.Points[i].LeadTime
		case i >= len(current.Points):
			lead = prior.Points[j].LeadTime
		case current.Points[i].LeadTime >= prior.Points[j].LeadTime:
			lead = current.Points[i].LeadTime
		default:
			lead = prior.Points[j].LeadTime
		}

		p := ComparisonPoint{LeadTime: lead, Current: metric.Undefined, Prior: metric.Undefined}
		if i < len(current.Points) && current.Points[i].LeadTime == lead {
			p.Current = metric.Of(current.Points[i].Cumulative)
			i++
		}
		if j < len(prior.Points) && prior.Points[j].LeadTime == lead {
			p.Prior = metric.Of(prior.Points[j].Cumulative)
			j++
		}
		p.Delta = metric.Sub(p.Current, p.Prior)
		c.Points = append(c.Points, p)
	}
	return c, nil
}

// AlignAll aligns every current curve that has a prior-year curve under mode.
func AlignAll(current, prior []Series, mode AlignMode) ([]Comparison, error) {
	byDate := make(map[string]Series, len(prior))
	for _, s := range prior {
		byDate[s.StayDate.Format(constants.DateLayout)] = s
	}

	var out []Comparison
	for _, s := range current {
		date, ok, err := PriorStayDate(s.StayDate, mode)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		p, ok := byDate[date.Format(constants.DateLayout)]
		if !ok {
			continue
		}
		c, err := Align(s, p, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
