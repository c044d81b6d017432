package adapters

import (
	"reflect"
	"testing"
	"time"

	"github.com/iwvelando/roomrev/internal/config"
	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/internal/sheet"
	"github.com/iwvelando/roomrev/internal/synonym"
)

func testConfiguration() *config.Configuration {
	return &config.Configuration{
		Input: config.InputConfig{
			File:       "export.xlsx",
			Sheet:      "Audit",
			HeaderRow:  3,
			DateColumn: "Night",
		},
		Analysis: config.AnalysisConfig{
			Granularity:    "month",
			RollingWindows: []int{3},
			Dimension:      "channel",
			Comparison:     "mom",
			PaceAlignment:  "day_of_year",
			TopN:           5,
			Workers:        2,
			From:           "2024-01-01",
			To:             "2024-06-30",
		},
	}
}

func TestAnalysisOptions(t *testing.T) {
	opts, err := AnalysisOptions(testConfiguration())
	if err != nil {
		t.Fatalf("AnalysisOptions() error = %v", err)
	}

	tests := []struct {
		name     string
		result   interface{}
		expected interface{}
	}{
		{"Granularity", opts.Granularity, "month"},
		{"RollingWindows", opts.RollingWindows, []int{3}},
		{"Dimension", opts.Dimension, "channel"},
		{"Comparison", opts.Comparison, "mom"},
		{"PaceAlignment", opts.PaceAlignment, "day_of_year"},
		{"TopN", opts.TopN, 5},
		{"Workers", opts.Workers, 2},
		{"From", opts.From, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"To", opts.To, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)},
		{"Overrides", opts.Overrides, map[synonym.Field]string{synonym.StayDate: "Night"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.result, tt.expected) {
				t.Errorf("%s = %v, expected %v", tt.name, tt.result, tt.expected)
			}
		})
	}
}

func TestAnalysisOptionsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Configuration)
	}{
		{"bad from", func(c *config.Configuration) { c.Analysis.From = "01/01/2024" }},
		{"bad to", func(c *config.Configuration) { c.Analysis.To = "tomorrow" }},
		{"unknown column", func(c *config.Configuration) { c.Input.Columns = map[string]string{"country": "Land"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfiguration()
			tt.mutate(c)
			if _, err := AnalysisOptions(c); err == nil {
				t.Errorf("AnalysisOptions() expected error")
			}
		})
	}
}

func TestAnalysisOptionsOpenRange(t *testing.T) {
	c := testConfiguration()
	c.Analysis.From = ""
	c.Analysis.To = ""

	opts, err := AnalysisOptions(c)
	if err != nil {
		t.Fatalf("AnalysisOptions() error = %v", err)
	}
	if !opts.From.IsZero() || !opts.To.IsZero() {
		t.Errorf("AnalysisOptions() range = %v..%v, expected unbounded", opts.From, opts.To)
	}
}

func TestSheetOptions(t *testing.T) {
	c := testConfiguration()
	opts, err := AnalysisOptions(c)
	if err != nil {
		t.Fatalf("AnalysisOptions() error = %v", err)
	}

	current, prior := SheetOptions(c, opts)
	if current.Sheet != "Audit" || current.HeaderRow != 3 {
		t.Errorf("SheetOptions() current = %+v, expected sheet Audit row 3", current)
	}
	if prior.Sheet != "" || prior.HeaderRow != 0 {
		t.Errorf("SheetOptions() prior = %+v, expected detection", prior)
	}
	for _, o := range []sheet.Options{current, prior} {
		if o.Resolve.Overrides[synonym.StayDate] != "Night" {
			t.Errorf("SheetOptions() overrides = %v, expected the date column", o.Resolve.Overrides)
		}
	}
}

func TestTableToInput(t *testing.T) {
	table := sheet.Table{
		Source:    "export.csv",
		HeaderRow: 2,
		Headers:   []string{"Date", "Rooms Sold"},
		Rows:      []record.RawRow{{Index: 0, Cells: []record.Cell{record.TextCell("2024-06-01"), record.NumberCell(80)}}},
	}

	input := TableToInput(table)
	if input.Source != "export.csv" {
		t.Errorf("Source = %s, expected export.csv", input.Source)
	}
	if !reflect.DeepEqual(input.Headers, table.Headers) {
		t.Errorf("Headers = %v, expected %v", input.Headers, table.Headers)
	}
	if len(input.Rows) != 1 || input.Rows[0].Cells[1].Number != 80 {
		t.Errorf("Rows = %v, expected the table rows", input.Rows)
	}
}
