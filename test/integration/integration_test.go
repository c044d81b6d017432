package integration

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/iwvelando/roomrev/internal/analysis"
	"github.com/iwvelando/roomrev/internal/config"
	"github.com/iwvelando/roomrev/internal/metrics"
	"github.com/iwvelando/roomrev/internal/sheet"
	"github.com/iwvelando/roomrev/internal/synonym"
	"github.com/iwvelando/roomrev/pkg/adapters"
	"github.com/iwvelando/roomrev/pkg/metric"
	"github.com/iwvelando/roomrev/pkg/output"
)

const testConfig = "../test_config.yaml"

// runConfig loads a configuration and runs it exactly as main() does.
func runConfig(t *testing.T, path string, mutate func(*config.Configuration)) (analysis.Report, sheet.Table) {
	t.Helper()
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if mutate != nil {
		mutate(conf)
	}

	opts, err := adapters.AnalysisOptions(conf)
	if err != nil {
		t.Fatalf("AnalysisOptions() error = %v", err)
	}
	aliases, err := synonym.Extend(synonym.Default(), conf.Synonyms.File)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}

	currentOpts, priorOpts := adapters.SheetOptions(conf, opts)
	table, err := sheet.ReadFile(logger, conf.Input.File, aliases, currentOpts)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", conf.Input.File, err)
	}
	var prior *analysis.Input
	if conf.Analysis.PriorFile != "" {
		priorTable, err := sheet.ReadFile(logger, conf.Analysis.PriorFile, aliases, priorOpts)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", conf.Analysis.PriorFile, err)
		}
		in := adapters.TableToInput(priorTable)
		prior = &in
	}

	report, err := analysis.NewRunner(aliases, logger, metrics.NewPipeline(nil)).
		Run(context.Background(), adapters.TableToInput(table), prior, opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return report, table
}

func value(t *testing.T, name string, v metric.Value) float64 {
	t.Helper()
	f, ok := v.Float()
	if !ok {
		t.Fatalf("%s is undefined", name)
	}
	return f
}

// TestMainIntegrationBaseline checks the headline figures of the test export.
func TestMainIntegrationBaseline(t *testing.T) {
	report, table := runConfig(t, testConfig, nil)

	if table.HeaderRow != 2 {
		t.Errorf("HeaderRow = %d, expected 2", table.HeaderRow)
	}
	if report.Summary.Records != 6 || report.Summary.Rejected != 1 {
		t.Errorf("Summary = %d records %d rejected, expected 6 and 1", report.Summary.Records, report.Summary.Rejected)
	}
	if len(report.Rejected) != 1 || report.Rejected[0].Field != "rooms_sold" {
		t.Errorf("Rejected = %v, expected the unparsable rooms sold row", report.Rejected)
	}

	s := report.Summary
	baselineChecks := []struct {
		name        string
		value       metric.Value
		expectedVal float64
		tolerance   float64
	}{
		{"rooms sold", s.RoomsSold, 450, 0},
		{"rooms available", s.RoomsAvailable, 600, 0},
		{"room revenue", s.RoomRevenue, 49100, 0},
		{"occupancy", s.KPIs.Occupancy, 0.75, 1e-9},
		{"adr", s.KPIs.ADR, 49100.0 / 450, 1e-9},
		{"revpar", s.KPIs.RevPAR, 49100.0 / 600, 1e-9},
		{"ooo rate", s.KPIs.OutOfOrderRate, 3.0 / 600, 1e-9},
	}
	for _, check := range baselineChecks {
		actual := value(t, check.name, check.value)
		if math.Abs(actual-check.expectedVal) > check.tolerance {
			t.Errorf("%s = %v, expected %v", check.name, actual, check.expectedVal)
		}
	}

	// The rejected day still has a bucket.
	if len(report.Buckets) != 7 {
		t.Errorf("Buckets = %d, expected 7", len(report.Buckets))
	}
	if len(report.Rolling) != 6 {
		t.Errorf("Rolling = %d series, expected 6", len(report.Rolling))
	}
}

// TestYearOverYear checks the comparison against the prior export.
func TestYearOverYear(t *testing.T) {
	report, _ := runConfig(t, testConfig, nil)

	if len(report.Deltas) != 3 {
		t.Fatalf("Deltas = %d, expected 3", len(report.Deltas))
	}

	tests := []struct {
		key     string
		prior   string
		revenue float64
		volume  string
		rate    string
		cross   string
	}{
		{"2024-06-01", "2023-06-01", 1000, "1000", "0", "0"},
		{"2024-06-02", "2023-06-02", 3900, "3000", "600", "300"},
		{"2024-06-03", "2023-06-03", 200, "-500", "750", "-50"},
	}
	for i, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d := report.Deltas[i]
			if d.Key != tt.key || d.PriorKey != tt.prior {
				t.Fatalf("Delta = %s vs %s, expected %s vs %s", d.Key, d.PriorKey, tt.key, tt.prior)
			}
			if got := value(t, "revenue delta", d.RoomRevenue.Delta); math.Abs(got-tt.revenue) > 1e-9 {
				t.Errorf("RoomRevenue.Delta = %v, expected %v", got, tt.revenue)
			}
			dec := d.Decomposition
			if !dec.Defined {
				t.Fatalf("Decomposition undefined")
			}
			for _, part := range []struct{ name, result, expected string }{
				{"volume", dec.Volume.StringFixed(6), tt.volume},
				{"rate", dec.Rate.StringFixed(6), tt.rate},
				{"cross", dec.Cross.StringFixed(6), tt.cross},
			} {
				if !strings.HasPrefix(part.result, part.expected) {
					t.Errorf("%s = %s, expected %s", part.name, part.result, part.expected)
				}
			}
			if !dec.Volume.Add(dec.Rate).Add(dec.Cross).Equal(dec.Total) {
				t.Errorf("volume + rate + cross = %s, expected %s", dec.Volume.Add(dec.Rate).Add(dec.Cross), dec.Total)
			}
		})
	}
}

// TestSegmentation checks the grouped views of the test export.
func TestSegmentation(t *testing.T) {
	report, _ := runConfig(t, testConfig, nil)

	expectedGroups := []struct {
		key     string
		revenue float64
	}{
		{"OTA", 20700},
		{"Direct", 15900},
		{"GDS", 12500},
	}
	if len(report.TopGroups) != len(expectedGroups) {
		t.Fatalf("TopGroups = %d, expected %d", len(report.TopGroups), len(expectedGroups))
	}
	for i, expected := range expectedGroups {
		g := report.TopGroups[i]
		if g.Key != expected.key || value(t, g.Key, g.RoomRevenue) != expected.revenue {
			t.Errorf("TopGroups[%d] = %s %v, expected %s %v", i, g.Key, g.RoomRevenue, expected.key, expected.revenue)
		}
	}

	if len(report.RoomTypes) != 2 {
		t.Fatalf("RoomTypes = %d, expected 2", len(report.RoomTypes))
	}
	for i, expected := range []struct {
		roomType  string
		occupancy float64
	}{{"K", 0.65}, {"Q", 0.95}} {
		rt := report.RoomTypes[i]
		if rt.RoomType != expected.roomType || math.Abs(value(t, rt.RoomType, rt.Occupancy)-expected.occupancy) > 1e-9 {
			t.Errorf("RoomTypes[%d] = %s %v, expected %s %v", i, rt.RoomType, rt.Occupancy, expected.roomType, expected.occupancy)
		}
	}

	c := report.Cancel
	if c == nil {
		t.Fatalf("Cancel = nil, expected a report")
	}
	if c.Overall.Bookings != 6 || c.Overall.Cancellations != 1 || c.Overall.NoShows != 1 {
		t.Errorf("Overall = %+v, expected 6 bookings 1 cancellation 1 no-show", c.Overall)
	}
	if math.Abs(value(t, "rate", c.Overall.Rate)-2.0/6) > 1e-9 {
		t.Errorf("Overall.Rate = %v, expected %v", c.Overall.Rate, 2.0/6)
	}
}

// TestPace checks the booking curves and the warnings they raise.
func TestPace(t *testing.T) {
	report, _ := runConfig(t, testConfig, nil)

	if len(report.Pace) != 6 {
		t.Fatalf("Pace = %d series, expected 6", len(report.Pace))
	}
	first := report.Pace[0]
	if first.Final() != 80 || len(first.Points) != 1 || first.Points[0].LeadTime != 12 {
		t.Errorf("Pace[0] = %+v, expected 80 rooms at lead time 12", first)
	}
	if len(report.PaceYoY) == 0 {
		t.Errorf("PaceYoY is empty, expected prior year curves")
	}

	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "no booking date") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, expected a missing booking date", report.Warnings)
	}
}

// TestOutputFormats renders the test export in every format.
func TestOutputFormats(t *testing.T) {
	report, _ := runConfig(t, testConfig, nil)

	var pretty bytes.Buffer
	if err := output.Write(&pretty, "pretty", report); err != nil {
		t.Fatalf("Write(pretty) error = %v", err)
	}
	for _, fragment := range []string{
		"Rooms sold 450",
		"Room revenue 49,100.00",
		"Occupancy 75.00%",
		"--- Period comparison ---",
		"--- Pace ---",
	} {
		if !strings.Contains(pretty.String(), fragment) {
			t.Errorf("pretty output missing %q", fragment)
		}
	}

	var csvOut bytes.Buffer
	if err := output.Write(&csvOut, "csv", report); err != nil {
		t.Fatalf("Write(csv) error = %v", err)
	}
	rows, err := csv.NewReader(&csvOut).ReadAll()
	if err != nil {
		t.Fatalf("csv output unreadable: %v", err)
	}
	if len(rows) != 8 {
		t.Errorf("csv output = %d rows, expected header and 7 periods", len(rows))
	}

	var jsonOut bytes.Buffer
	if err := output.Write(&jsonOut, "json", report); err != nil {
		t.Fatalf("Write(json) error = %v", err)
	}
	if !strings.Contains(jsonOut.String(), `"run_id"`) {
		t.Errorf("json output missing run_id")
	}
}

// TestConfigurationVariations runs the test export with other options.
func TestConfigurationVariations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Configuration)
		buckets int
		deltas  int
	}{
		{
			name:    "weekly buckets",
			mutate:  func(c *config.Configuration) { c.Analysis.Granularity = "week" },
			buckets: 2,
			deltas:  1,
		},
		{
			name: "monthly within the export",
			mutate: func(c *config.Configuration) {
				c.Analysis.Granularity = "month"
				c.Analysis.Comparison = "mom"
			},
			buckets: 1,
			deltas:  0,
		},
		{
			name: "no comparison, restricted range",
			mutate: func(c *config.Configuration) {
				c.Analysis.Comparison = "none"
				c.Analysis.From = "2024-06-02"
				c.Analysis.To = "2024-06-04"
			},
			buckets: 3,
			deltas:  0,
		},
		{
			name:    "without prior file",
			mutate:  func(c *config.Configuration) { c.Analysis.PriorFile = "" },
			buckets: 7,
			deltas:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, _ := runConfig(t, testConfig, tt.mutate)
			if len(report.Buckets) != tt.buckets {
				t.Errorf("Buckets = %d, expected %d", len(report.Buckets), tt.buckets)
			}
			if len(report.Deltas) != tt.deltas {
				t.Errorf("Deltas = %d, expected %d", len(report.Deltas), tt.deltas)
			}
		})
	}
}
