package aggregate

import (
	"fmt"
	"time"

	"github.com/iwvelando/roomrev/internal/kpi"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Measure extracts one value from a bucket.
type Measure struct {
	Name string
	Fn   func(Bucket) metric.Value
}

// Measures are the bucket series reported with rolling averages.
var Measures = []Measure{
	{"rooms_sold", func(b Bucket) metric.Value { return b.RoomsSold }},
	{"room_revenue", func(b Bucket) metric.Value { return b.RoomRevenue }},
	{kpi.NameTotalRevenue, func(b Bucket) metric.Value { return kpi.TotalRevenue(b.Inputs()) }},
	{kpi.NameOccupancy, func(b Bucket) metric.Value { return kpi.Occupancy(b.Inputs()) }},
	{kpi.NameADR, func(b Bucket) metric.Value { return kpi.ADR(b.Inputs()) }},
	{kpi.NameRevPAR, func(b Bucket) metric.Value { return kpi.RevPAR(b.Inputs()) }},
}

// RollingPoint is the trailing mean ending at one bucket.
type RollingPoint struct {
	Key    string       `json:"key"`
	Start  time.Time    `json:"start"`
	Window int          `json:"window"`
	Value  metric.Value `json:"value"`
	// Partial is set when fewer than Window buckets precede the point.
	Partial bool `json:"partial"`
}

// Rolling computes the mean of measure over buckets i-window+1..i for each
// bucket i, clipped at the start of the series. An undefined value anywhere
// in a window makes that point undefined.
func Rolling(buckets []Bucket, window int, measure func(Bucket) metric.Value) ([]RollingPoint, error) {
	if window < 1 {
		return nil, fmt.Errorf("rolling window must be at least 1, got %d", window)
	}

	values := make([]metric.Value, len(buckets))
	for i, b := range buckets {
		values[i] = measure(b)
	}

	points := make([]RollingPoint, len(buckets))
	for i, b := range buckets {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		points[i] = RollingPoint{
			Key:     b.Key,
			Start:   b.Start,
			Window:  window,
			Value:   metric.Mean(values[lo : i+1]),
			Partial: i+1 < window,
		}
	}
	return points, nil
}
