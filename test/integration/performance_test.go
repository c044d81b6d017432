package integration

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/roomrev/internal/analysis"
	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/metric"
	"github.com/iwvelando/roomrev/pkg/testutil"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

var (
	roomTypes = []string{"K", "Q", "T", "S"}
	channels  = []string{"OTA", "Direct", "GDS"}
)

// syntheticInput builds a daily export of one row per room type, starting
// on 2022-01-01.
func syntheticInput(days int) analysis.Input {
	start := testutil.Day("2022-01-01")
	in := analysis.Input{Source: "synthetic", Headers: testutil.Headers}
	for d := 0; d < days; d++ {
		stay := start.AddDate(0, 0, d)
		for i, roomType := range roomTypes {
			sold := float64(20 + (d+i*7)%15)
			rec := record.Canonical{
				StayDate:       stay,
				BookingDate:    stay.AddDate(0, 0, -((d + i) % 40)),
				HasBookingDate: true,
				RoomsSold:      metric.Of(sold),
				RoomsAvailable: metric.Of(40),
				RoomRevenue:    metric.Of(sold * float64(90+10*i)),
				FBRevenue:      metric.Of(sold * 12),
				Channel:        channels[(d+i)%len(channels)],
				RoomType:       roomType,
				Cancelled:      (d+i)%23 == 0,
				NoShow:         (d+i)%31 == 0,
				OutOfOrder:     metric.Of(float64((d + i) % 2)),
			}
			in.Rows = append(in.Rows, testutil.FormatRow(len(in.Rows), rec))
		}
	}
	return in
}

func largeOptions() analysis.Options {
	opts := analysis.DefaultOptions()
	opts.Dimension = "channel"
	return opts
}

// TestBasicFunctionality tests basic functionality works
func TestBasicFunctionality(t *testing.T) {
	report, err := analysis.NewRunner(nil, zap.NewNop(), nil).
		Run(context.Background(), syntheticInput(30), nil, largeOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Summary.Records != 30*len(roomTypes) {
		t.Fatalf("Records = %d, expected %d", report.Summary.Records, 30*len(roomTypes))
	}
	t.Logf("Successfully analyzed %d records", report.Summary.Records)
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	const days = 3 * 365
	start := time.Now()
	in := syntheticInput(days)
	buildTime := time.Since(start)

	start = time.Now()
	report, err := analysis.NewRunner(nil, zap.NewNop(), nil).
		Run(context.Background(), in, nil, largeOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	runTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Build input: %v", buildTime)
	t.Logf("  Analyze %d rows: %v", len(in.Rows), runTime)

	if runTime > 10*time.Second {
		t.Errorf("Analysis time %v exceeds 10 second threshold", runTime)
	}
	if report.Summary.Records != days*len(roomTypes) {
		t.Errorf("Records = %d, expected %d", report.Summary.Records, days*len(roomTypes))
	}
	if len(report.Buckets) != days {
		t.Errorf("Buckets = %d, expected %d", len(report.Buckets), days)
	}
	// 2022 has no prior year and 29 February 2024 has no counterpart.
	if expected := days - 365 - 1; len(report.Deltas) != expected {
		t.Errorf("Deltas = %d, expected %d", len(report.Deltas), expected)
	}
	if len(report.Pace) != days {
		t.Errorf("Pace = %d series, expected %d", len(report.Pace), days)
	}
}

// TestMemoryUsage performs basic memory usage validation
func TestMemoryUsage(t *testing.T) {
	in := syntheticInput(120)
	runner := analysis.NewRunner(nil, zap.NewNop(), nil)

	for i := 0; i < 10; i++ {
		if _, err := runner.Run(context.Background(), in, nil, largeOptions()); err != nil {
			t.Fatalf("Run failed on iteration %d: %v", i, err)
		}
	}

	t.Log("Successfully completed 10 iterations without memory issues")
}

// TestDataConsistency validates that runs with different worker counts
// produce identical results
func TestDataConsistency(t *testing.T) {
	in := syntheticInput(90)
	runner := analysis.NewRunner(nil, zap.NewNop(), nil)

	var baseline []byte
	for _, workers := range []int{1, 2, 8} {
		opts := largeOptions()
		opts.Workers = workers
		report, err := runner.Run(context.Background(), in, nil, opts)
		if err != nil {
			t.Fatalf("Run(workers=%d) failed: %v", workers, err)
		}
		report.RunID = ""
		report.GeneratedAt = time.Time{}

		encoded, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if baseline == nil {
			baseline = encoded
			continue
		}
		if string(encoded) != string(baseline) {
			t.Errorf("Run(workers=%d) differs from the single worker run", workers)
		}
	}
}
