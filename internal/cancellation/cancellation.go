// Package cancellation computes cancellation and no-show rates.
package cancellation

import (
	"sort"

	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Slice holds the counts and rates of one group of bookings. Every record
// counts as one booking. Rates are undefined for a slice without bookings.
type Slice struct {
	Key           string `json:"key"`
	Bookings      int    `json:"bookings"`
	Cancellations int    `json:"cancellations"`
	NoShows       int    `json:"no_shows"`

	// Rate is (cancellations + no-shows) / bookings.
	Rate             metric.Value `json:"rate"`
	CancellationRate metric.Value `json:"cancellation_rate"`
	NoShowRate       metric.Value `json:"no_show_rate"`
}

func (s *Slice) add(r record.Canonical) {
	s.Bookings++
	if r.Cancelled {
		s.Cancellations++
	}
	if r.NoShow {
		s.NoShows++
	}
}

func (s *Slice) finalize() {
	bookings := metric.Of(float64(s.Bookings))
	s.Rate = metric.Div(metric.Of(float64(s.Cancellations+s.NoShows)), bookings)
	s.CancellationRate = metric.Div(metric.Of(float64(s.Cancellations)), bookings)
	s.NoShowRate = metric.Div(metric.Of(float64(s.NoShows)), bookings)
}

// Report is the overall slice and, when a dimension was given, one slice
// per distinct value sorted by key.
type Report struct {
	Dimension string  `json:"dimension,omitempty"`
	Overall   Slice   `json:"overall"`
	Slices    []Slice `json:"slices,omitempty"`
}

// Analyze computes rates overall and per value of dimension. An empty
// dimension reports the overall slice only. Records without a value for the
// dimension are grouped under "(none)".
func Analyze(records []record.Canonical, dimension string) (Report, error) {
	report := Report{Dimension: dimension, Overall: Slice{Key: "overall"}}
	groups := make(map[string]*Slice)

	for _, r := range records {
		report.Overall.add(r)
		if dimension == "" {
			continue
		}
		key, err := r.Dimension(dimension)
		if err != nil {
			return Report{}, err
		}
		if key == "" {
			key = constants.BlankDimension
		}
		s, ok := groups[key]
		if !ok {
			s = &Slice{Key: key}
			groups[key] = s
		}
		s.add(r)
	}

	report.Overall.finalize()
	for _, s := range groups {
		s.finalize()
		report.Slices = append(report.Slices, *s)
	}
	sort.Slice(report.Slices, func(i, j int) bool { return report.Slices[i].Key < report.Slices[j].Key })
	return report, nil
}
